package grpcapi

import (
	"context"
	"log"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/betinha/rental-core/internal/finance"
	"github.com/betinha/rental-core/internal/model"
	"github.com/betinha/rental-core/internal/service"
)

// FinanceServer exposes recalculation and stats over gRPC.
type FinanceServer struct {
	events *service.EventService
	stats  *service.StatsService
}

func NewFinanceServer(events *service.EventService, stats *service.StatsService) *FinanceServer {
	return &FinanceServer{events: events, stats: stats}
}

func (s *FinanceServer) Recalculate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	b, err := s.events.Recalculate(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{
		"eventId":            strings.TrimSpace(req.GetValue()),
		"totalRevenue":       finance.Format(b.TotalRevenue),
		"totalCostItems":     finance.Format(b.TotalCostItems),
		"totalCostLabor":     finance.Format(b.TotalCostLabor),
		"fuelCost":           finance.Format(b.FuelCost),
		"maintenanceCost":    finance.Format(b.MaintenanceCost),
		"totalCostTransport": finance.Format(b.TotalCostTransport),
		"extraExpenses":      finance.Format(b.ExtraExpenses),
		"netProfit":          finance.Format(b.NetProfit),
		"profitMargin":       finance.Format(b.ProfitMargin),
	})
}

func (s *FinanceServer) GetEventFinancials(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	ev, err := s.events.GetEvent(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(eventFinancials(ev))
}

func (s *FinanceServer) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	d, err := s.stats.Stats(ctx, service.StatsFilter{})
	if err != nil {
		return nil, toStatus(err)
	}
	chart := make([]any, 0, len(d.Chart))
	for _, b := range d.Chart {
		chart = append(chart, map[string]any{
			"month":   b.Month,
			"revenue": finance.Format(b.Revenue),
			"cost":    finance.Format(b.Cost),
		})
	}
	return newStruct(map[string]any{
		"monthlyRevenue": finance.Format(d.MonthlyRevenue),
		"monthlyProfit":  finance.Format(d.MonthlyProfit),
		"avgMargin":      finance.Format(d.AvgMargin),
		"pendingEvents":  d.PendingEvents,
		"chart":          chart,
	})
}

func eventFinancials(ev *model.Event) map[string]any {
	return map[string]any{
		"eventId":            ev.ID.String(),
		"status":             string(ev.Status),
		"financialStatus":    string(ev.FinancialStatus),
		"totalRevenue":       finance.Format(ev.TotalRevenue),
		"totalCostItems":     finance.Format(ev.TotalCostItems),
		"totalCostLabor":     finance.Format(ev.TotalCostLabor),
		"totalCostTransport": finance.Format(ev.TotalCostTransport),
		"extraExpenses":      finance.Format(ev.ExtraExpenses),
		"netProfit":          finance.Format(ev.NetProfit),
		"profitMargin":       finance.Format(ev.ProfitMargin),
	}
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStatus maps service error kinds onto gRPC codes.
func toStatus(err error) error {
	var code codes.Code
	switch service.KindOf(err) {
	case service.KindValidation:
		code = codes.InvalidArgument
	case service.KindNotFound:
		code = codes.NotFound
	case service.KindUnauthorized:
		code = codes.Unauthenticated
	default:
		log.Printf("grpc: internal error: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

// NewServer builds a gRPC server with the finance service, the standard
// health service and reflection. With a non-nil auth every call except
// health checks must carry "authorization: Bearer <token>" metadata.
func NewServer(fin FinanceServiceServer, auth *service.AuthService) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor, authInterceptor(auth)))

	RegisterFinanceServiceServer(srv, fin)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv, hs
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.Printf("grpc %s %s %s", info.FullMethod, status.Code(err), time.Since(start))
	return resp, err
}

func authInterceptor(auth *service.AuthService) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if auth == nil || !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		var token string
		if vals := md.Get("authorization"); len(vals) > 0 {
			token = strings.TrimSpace(strings.TrimPrefix(vals[0], "Bearer "))
		}
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		userID, err := auth.ParseToken(token)
		if err != nil {
			return nil, toStatus(err)
		}
		return handler(service.WithUserID(ctx, userID), req)
	}
}
