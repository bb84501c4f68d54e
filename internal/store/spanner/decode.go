package spanner

import (
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/spanner"
	"cloud.google.com/go/spanner/apiv1/spannerpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/murkotick/storefront-catalog/internal/store"
)

func decodeRow(row *spanner.Row) (store.Row, error) {
	out := make(store.Row, row.Size())
	for i, name := range row.ColumnNames() {
		var col spanner.GenericColumnValue
		if err := row.Column(i, &col); err != nil {
			return nil, fmt.Errorf("spanner: column %s: %w", name, err)
		}
		v, err := decodeValue(col.Type, col.Value)
		if err != nil {
			return nil, fmt.Errorf("spanner: column %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func decodeValue(t *spannerpb.Type, v *structpb.Value) (any, error) {
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}

	switch t.GetCode() {
	case spannerpb.TypeCode_STRING, spannerpb.TypeCode_NUMERIC, spannerpb.TypeCode_JSON:
		return v.GetStringValue(), nil
	case spannerpb.TypeCode_INT64:
		return strconv.ParseInt(v.GetStringValue(), 10, 64)
	case spannerpb.TypeCode_FLOAT64:
		if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			// NaN and infinities arrive as strings.
			return strconv.ParseFloat(s.StringValue, 64)
		}
		return v.GetNumberValue(), nil
	case spannerpb.TypeCode_BOOL:
		return v.GetBoolValue(), nil
	case spannerpb.TypeCode_TIMESTAMP:
		return time.Parse(time.RFC3339Nano, v.GetStringValue())
	case spannerpb.TypeCode_DATE:
		return time.Parse("2006-01-02", v.GetStringValue())
	}
	return nil, fmt.Errorf("unsupported type %s", t.GetCode())
}
