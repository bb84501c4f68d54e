package spanner

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/murkotick/storefront-catalog/internal/store"
)

const tokenPrefix = "offset:"

// Spanner has no driver paging token, so pages are addressed by offset.
func encodePageToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(tokenPrefix + strconv.Itoa(offset)))
}

func decodePageToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidPageState, err)
	}
	s, ok := strings.CutPrefix(string(raw), tokenPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected token format", store.ErrInvalidPageState)
	}
	offset, err := strconv.Atoi(s)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: bad offset %q", store.ErrInvalidPageState, s)
	}
	return offset, nil
}
