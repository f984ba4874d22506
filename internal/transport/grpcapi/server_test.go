package grpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/betinha/rental-core/internal/config"
	"github.com/betinha/rental-core/internal/db"
	"github.com/betinha/rental-core/internal/lock"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/repository"
	"github.com/betinha/rental-core/internal/service"
)

type testEnv struct {
	client  *FinanceServiceClient
	health  healthpb.HealthClient
	events  *service.EventService
	catalog *service.CatalogService
	fleet   *service.FleetService
	auth    *service.AuthService
}

func newTestEnv(t *testing.T, withAuth bool) *testEnv {
	t.Helper()
	gdb, err := db.NewGormDB(&config.DBConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := repository.NewGormStore(gdb)

	env := &testEnv{
		events:  service.NewEventService(store, lock.NewLocalLocker(), nil),
		catalog: service.NewCatalogService(store),
		fleet:   service.NewFleetService(store),
		auth:    service.NewAuthService(store, "test-secret", time.Hour),
	}
	var auth *service.AuthService
	if withAuth {
		auth = env.auth
	}

	srv, _ := NewServer(NewFinanceServer(env.events, service.NewStatsService(store, time.UTC)), auth)
	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	env.client = NewFinanceServiceClient(conn)
	env.health = healthpb.NewHealthClient(conn)
	return env
}

func str(s string) *string { return &s }

// fleetEvent builds the van scenario: one 500.00 item costing 100.00 and
// 25 km with a 8.5 km/l van, fuel at 5.90 and 0.50/km maintenance.
func (e *testEnv) fleetEvent(t *testing.T) *model.Event {
	t.Helper()
	ctx := context.Background()
	v, err := e.fleet.Create(ctx, service.VehicleFields{
		Name:                 str("Fiorino"),
		LicensePlate:         str("ABC1D23"),
		KmPerLiter:           str("8.5"),
		AvgFuelPrice:         str("5.90"),
		MaintenanceCostPerKm: str("0.50"),
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	item, err := e.catalog.CreateItem(ctx, service.CatalogItemFields{
		Name:         str("Show de mágica"),
		Type:         str(string(model.CatalogItemService)),
		PriceClient:  str("500.00"),
		InternalCost: str("100.00"),
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	ev, err := e.events.CreateEvent(ctx, service.EventInput{
		ClientName:    "Joana",
		Address:       "Rua A, 1",
		EventDate:     time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC),
		DistanceKm:    "25.00",
		TransportType: model.TransportFleet,
		VehicleID:     v.ID.String(),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := e.events.AttachItem(ctx, ev.ID.String(), item.ID.String(), 1); err != nil {
		t.Fatalf("attach item: %v", err)
	}
	return ev
}

func TestRecalculate(t *testing.T) {
	env := newTestEnv(t, false)
	ev := env.fleetEvent(t)

	out, err := env.client.Recalculate(context.Background(), ev.ID.String())
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	fields := out.AsMap()
	want := map[string]string{
		"totalRevenue":       "500.00",
		"totalCostItems":     "100.00",
		"fuelCost":           "17.35",
		"maintenanceCost":    "12.50",
		"totalCostTransport": "29.85",
		"netProfit":          "370.15",
		"profitMargin":       "74.03",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Fatalf("%s: expected %s, got %v", k, v, fields[k])
		}
	}
}

func TestGetEventFinancials(t *testing.T) {
	env := newTestEnv(t, false)
	ev := env.fleetEvent(t)

	out, err := env.client.GetEventFinancials(context.Background(), ev.ID.String())
	if err != nil {
		t.Fatalf("GetEventFinancials: %v", err)
	}
	fields := out.AsMap()
	if fields["netProfit"] != "370.15" || fields["status"] != "PENDING" {
		t.Fatalf("unexpected financials: %v", fields)
	}
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t, false)
	env.fleetEvent(t)

	out, err := env.client.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	fields := out.AsMap()
	if fields["monthlyRevenue"] != "500.00" {
		t.Fatalf("expected revenue 500.00, got %v", fields["monthlyRevenue"])
	}
	if fields["pendingEvents"] != float64(1) {
		t.Fatalf("expected 1 pending event, got %v", fields["pendingEvents"])
	}
	chart, ok := fields["chart"].([]any)
	if !ok || len(chart) != 1 {
		t.Fatalf("expected one chart bucket, got %v", fields["chart"])
	}
}

func TestErrorCodes(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.client.Recalculate(ctx, "not-a-uuid")
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	_, err = env.client.GetEventFinancials(ctx, uuid.NewString())
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	if _, err := env.client.GetStats(ctx); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without token, got %v", err)
	}

	if _, _, err := env.auth.EnsureAdmin(ctx, "admin@example.com", "s3cret-pass", ""); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	token, _, err := env.auth.Login(ctx, "admin@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	if _, err := env.client.GetStats(authed); err != nil {
		t.Fatalf("GetStats with token: %v", err)
	}

	// health checks stay open
	resp, err := env.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}
}
