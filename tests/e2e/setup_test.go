package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/murkotick/storefront-catalog/internal/app/product/queries"
	"github.com/murkotick/storefront-catalog/internal/app/product/repo"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/create_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/remove_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_product"
	"github.com/murkotick/storefront-catalog/internal/app/product/usecases/update_stock"
	"github.com/murkotick/storefront-catalog/internal/client"
	"github.com/murkotick/storefront-catalog/internal/pkg/clock"
	committer "github.com/murkotick/storefront-catalog/internal/pkg/committer"
	"github.com/murkotick/storefront-catalog/internal/pkg/idgen"
	"github.com/murkotick/storefront-catalog/internal/statement"
	"github.com/murkotick/storefront-catalog/internal/store/driver"
	"github.com/murkotick/storefront-catalog/internal/store/scylla"
	"github.com/murkotick/storefront-catalog/internal/transport/http/httpapi"
	"github.com/murkotick/storefront-catalog/internal/transport/http/product"
	"github.com/murkotick/storefront-catalog/migrations"
)

var (
	session   *scylla.Session
	readModel *queries.StoreReadModel
	clk       *clock.FakeClock

	createUC *create_product.Interactor
	updateUC *update_product.Interactor
	stockUC  *update_stock.Interactor
	removeUC *remove_product.Interactor

	api *client.Client
)

// TestMain runs against a live Scylla cluster named by SCYLLA_HOSTS.
// Without it the package is skipped.
func TestMain(m *testing.M) {
	hosts := os.Getenv("SCYLLA_HOSTS")
	if hosts == "" {
		fmt.Println("SCYLLA_HOSTS not set; skipping e2e tests")
		os.Exit(0)
	}
	localDC := env("SCYLLA_LOCAL_DC", "datacenter1")

	clk = clock.NewFake(time.Now().UTC().Truncate(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	// A keyspace per run keeps runs independent.
	keyspace := "e2e_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	stmts, err := migrations.CQL(migrations.CQLParams{Keyspace: keyspace, LocalDC: localDC})
	if err != nil {
		panic(fmt.Sprintf("read CQL: %v", err))
	}

	cfg := scylla.Config{
		Hosts:          strings.Split(hosts, ","),
		LocalDC:        localDC,
		Consistency:    "LOCAL_QUORUM",
		Timeout:        10 * time.Second,
		ConnectTimeout: 10 * time.Second,
	}
	admin, err := scylla.Connect(ctx, cfg, zap.NewNop())
	if err != nil {
		panic(fmt.Sprintf("connect: %v", err))
	}
	if err := admin.ApplySchema(ctx, stmts); err != nil {
		panic(fmt.Sprintf("apply schema: %v", err))
	}

	cfg.Keyspace = keyspace
	session, err = scylla.Connect(ctx, cfg, zap.NewNop())
	if err != nil {
		panic(fmt.Sprintf("connect keyspace: %v", err))
	}

	reg, err := driver.NewRegistry()
	if err != nil {
		panic(err)
	}
	b := statement.NewBuilder(reg)
	ids, err := idgen.NewSnowflake(7)
	if err != nil {
		panic(err)
	}

	pr := repo.NewProductRepo(b)
	cm := committer.NewAdapter(session, b)
	readModel = queries.NewStoreReadModel(session, b, queries.Options{ScanWindow: 1000, DistinctFetchSize: 1000})

	createUC = create_product.NewInteractor(pr, cm, clk, ids)
	updateUC = update_product.NewInteractor(pr, cm, readModel)
	stockUC = update_stock.NewInteractor(pr, cm, readModel)
	removeUC = remove_product.NewInteractor(pr, cm)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httpapi.ErrorHandlingMiddleware())
	product.NewHandler(product.Commands{
		Create:      createUC,
		Update:      updateUC,
		UpdateStock: stockUC,
		Remove:      removeUC,
	}, readModel, product.Options{DefaultPageSize: 5, MaxPageSize: 50}).Register(r)
	srv := httptest.NewServer(r)
	api = client.New(srv.URL)

	code := m.Run()

	srv.Close()
	_ = session.Close()

	// Best-effort cleanup.
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Minute)
	defer cancel2()
	_ = admin.ApplySchema(ctx2, []string{"DROP KEYSPACE IF EXISTS " + keyspace})
	_ = admin.Close()

	os.Exit(code)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
