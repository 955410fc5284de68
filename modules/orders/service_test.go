package orders

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/storefront/domain/order"
)

func setupTest(t *testing.T) (*Service, func()) {
	t.Helper()

	dbPath := "test_orders_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	repo := domain.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	service, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return service, cleanup
}

func testItems() []domain.Item {
	return []domain.Item{
		{Title: "Widget", Price: 9.99, Quantity: 2},
		{Title: "Gadget", Price: 19.99, Quantity: 1},
	}
}

func TestService_Create(t *testing.T) {
	service, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	order, err := service.Create(ctx, "user-1", &CreateOrderRequest{
		Items: testItems(),
		Total: 39.97,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if order.ID == "" {
		t.Error("order.ID is empty")
	}
	if len(order.Reference) != referenceLength {
		t.Errorf("len(order.Reference) = %d, want %d", len(order.Reference), referenceLength)
	}
	if order.Status != domain.StatusPending {
		t.Errorf("order.Status = %v, want pending", order.Status)
	}
	if order.UserID != "user-1" {
		t.Errorf("order.UserID = %v, want user-1", order.UserID)
	}
}

func TestService_Create_Validation(t *testing.T) {
	service, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	tests := []struct {
		name    string
		req     *CreateOrderRequest
		wantErr error
	}{
		{
			name:    "no items",
			req:     &CreateOrderRequest{Items: nil, Total: 10},
			wantErr: ErrEmptyOrder,
		},
		{
			name:    "zero total",
			req:     &CreateOrderRequest{Items: testItems(), Total: 0},
			wantErr: ErrInvalidTotal,
		},
		{
			name: "zero quantity item",
			req: &CreateOrderRequest{
				Items: []domain.Item{{Title: "Widget", Price: 1, Quantity: 0}},
				Total: 1,
			},
			wantErr: ErrEmptyOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "user-1", tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	orders, err := service.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("len(orders) after failed creates = %d, want 0", len(orders))
	}
}

func TestService_ListForUser(t *testing.T) {
	service, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := service.Create(ctx, "user-1", &CreateOrderRequest{
			Items: testItems(),
			Total: 39.97,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := service.Create(ctx, "user-2", &CreateOrderRequest{
		Items: testItems(),
		Total: 39.97,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	orders, err := service.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("len(orders) = %d, want 2", len(orders))
	}
	for _, o := range orders {
		if o.UserID != "user-1" {
			t.Errorf("order %s belongs to %s, want user-1", o.ID, o.UserID)
		}
		if len(o.Items) != 2 {
			t.Errorf("order %s has %d items, want 2", o.ID, len(o.Items))
		}
	}
	// Newest first.
	if orders[0].CreatedAt.Before(orders[1].CreatedAt) {
		t.Error("orders not sorted newest first")
	}
}

func TestService_Get_Ownership(t *testing.T) {
	service, cleanup := setupTest(t)
	defer cleanup()

	ctx := context.Background()

	order, err := service.Create(ctx, "user-1", &CreateOrderRequest{
		Items: testItems(),
		Total: 39.97,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := service.Get(ctx, "user-1", order.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("got.ID = %v, want %v", got.ID, order.ID)
	}

	// Another user must not be able to read it.
	_, err = service.Get(ctx, "user-2", order.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("Get() as other user error = %v, want ErrNotOwner", err)
	}

	_, err = service.Get(ctx, "user-1", "no-such-order")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Get() unknown order error = %v, want ErrOrderNotFound", err)
	}
}
