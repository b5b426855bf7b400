package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
)

type purchaseFixture struct {
	service   PurchaseService
	products  *fakeProductRepo
	vendors   *fakeVendorRepo
	purchases *fakePurchaseRepo
	movements *fakeMovementRepo
	payments  *fakePaymentRepo
	txs       *fakeTransactionRepo
	notifier  *recordingNotifier
}

func newPurchaseFixture() *purchaseFixture {
	products := newFakeProductRepo()
	vendors := newFakeVendorRepo()
	purchases := newFakePurchaseRepo(products, vendors)
	movements := &fakeMovementRepo{}
	payments := &fakePaymentRepo{}
	txs := &fakeTransactionRepo{}
	notifier := &recordingNotifier{}

	return &purchaseFixture{
		service: NewPurchaseService(purchases, vendors, products, movements,
			payments, txs, fakeTxManager{}, notifier),
		products:  products,
		vendors:   vendors,
		purchases: purchases,
		movements: movements,
		payments:  payments,
		txs:       txs,
		notifier:  notifier,
	}
}

func TestCreatePurchase(t *testing.T) {
	f := newPurchaseFixture()
	vendorID := f.vendors.add(model.Vendor{Name: "Steel Traders", Balance: dec("100"), IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "CEM-50", Name: "Cement 50kg", Unit: model.UnitBag,
		StockQuantity: dec("10"), IsActive: true,
	})

	resp, err := f.service.CreatePurchase(context.Background(), uuid.NewString(), CreatePurchaseRequest{
		VendorID: vendorID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: productID.String(), Quantity: "20", UnitPrice: "350"},
		},
		PaidAmount:  "2000",
		PaymentMode: model.PaymentModeCash,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if resp.TotalAmount != "7000.0000" {
		t.Errorf("total = %s, want 7000.0000", resp.TotalAmount)
	}
	if resp.PaidAmount != "2000.0000" || resp.DueAmount != "5000.0000" {
		t.Errorf("paid/due = %s/%s, want 2000.0000/5000.0000", resp.PaidAmount, resp.DueAmount)
	}

	product, _ := f.products.FindByID(context.Background(), productID)
	if !product.StockQuantity.Equal(dec("30")) {
		t.Errorf("stock = %s, want 30", product.StockQuantity)
	}

	if len(f.movements.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(f.movements.movements))
	}
	movement := f.movements.movements[0]
	if movement.MovementType != model.MovementPurchase {
		t.Errorf("movement type = %s, want PURCHASE", movement.MovementType)
	}
	if !movement.BalanceBefore.Equal(dec("10")) || !movement.BalanceAfter.Equal(dec("30")) {
		t.Errorf("movement before/after = %s/%s, want 10/30", movement.BalanceBefore, movement.BalanceAfter)
	}

	// vendor owes grows by the unpaid remainder only
	vendor, _ := f.vendors.FindByID(context.Background(), vendorID)
	if !vendor.Balance.Equal(dec("5100")) {
		t.Errorf("vendor balance = %s, want 5100", vendor.Balance)
	}

	// creation-time payment row keeps the pass-through snapshot
	if len(f.payments.payments) != 1 {
		t.Fatalf("payment rows = %d, want 1", len(f.payments.payments))
	}
	payment := f.payments.payments[0]
	if !payment.BalanceBefore.Equal(dec("5100")) || !payment.BalanceAfter.Equal(dec("5100")) {
		t.Errorf("payment snapshot = %s/%s, want 5100/5100", payment.BalanceBefore, payment.BalanceAfter)
	}

	if len(f.txs.transactions) != 1 || f.txs.transactions[0].TxType != model.TxPaymentOut {
		t.Errorf("expected one PAYMENT_OUT transaction, got %+v", f.txs.transactions)
	}

	if len(f.notifier.events) != 1 || f.notifier.events[0] != productID {
		t.Errorf("expected stock notification for %s, got %v", productID, f.notifier.events)
	}
}

func TestCreatePurchaseUnpaidHasNoPaymentRow(t *testing.T) {
	f := newPurchaseFixture()
	vendorID := f.vendors.add(model.Vendor{Name: "Brick Depot", IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "BRK-01", Name: "Red Brick", Unit: model.UnitPiece, IsActive: true,
	})

	_, err := f.service.CreatePurchase(context.Background(), "", CreatePurchaseRequest{
		VendorID: vendorID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: productID.String(), Quantity: "500", UnitPrice: "12"},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if len(f.payments.payments) != 0 {
		t.Errorf("payment rows = %d, want 0 for fully unpaid purchase", len(f.payments.payments))
	}
	if len(f.txs.transactions) != 0 {
		t.Errorf("transactions = %d, want 0 for fully unpaid purchase", len(f.txs.transactions))
	}

	vendor, _ := f.vendors.FindByID(context.Background(), vendorID)
	if !vendor.Balance.Equal(dec("6000")) {
		t.Errorf("vendor balance = %s, want 6000", vendor.Balance)
	}
}

func TestCreatePurchaseValidation(t *testing.T) {
	f := newPurchaseFixture()
	vendorID := f.vendors.add(model.Vendor{Name: "Steel Traders", IsActive: true})
	activeID := f.products.add(model.Product{SKU: "A", Name: "Active", Unit: model.UnitKg, IsActive: true})
	inactiveID := f.products.add(model.Product{SKU: "B", Name: "Retired", Unit: model.UnitKg, IsActive: false})

	tests := []struct {
		name     string
		req      CreatePurchaseRequest
		wantCode apperror.Code
	}{
		{
			name: "unknown vendor",
			req: CreatePurchaseRequest{
				VendorID: uuid.NewString(),
				Items:    []InvoiceItemRequest{{ProductID: activeID.String(), Quantity: "1", UnitPrice: "10"}},
			},
			wantCode: apperror.CodeNotFound,
		},
		{
			name: "unknown product",
			req: CreatePurchaseRequest{
				VendorID: vendorID.String(),
				Items:    []InvoiceItemRequest{{ProductID: uuid.NewString(), Quantity: "1", UnitPrice: "10"}},
			},
			wantCode: apperror.CodeNotFound,
		},
		{
			name: "inactive product",
			req: CreatePurchaseRequest{
				VendorID: vendorID.String(),
				Items:    []InvoiceItemRequest{{ProductID: inactiveID.String(), Quantity: "1", UnitPrice: "10"}},
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "zero quantity",
			req: CreatePurchaseRequest{
				VendorID: vendorID.String(),
				Items:    []InvoiceItemRequest{{ProductID: activeID.String(), Quantity: "0", UnitPrice: "10"}},
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "negative unit price",
			req: CreatePurchaseRequest{
				VendorID: vendorID.String(),
				Items:    []InvoiceItemRequest{{ProductID: activeID.String(), Quantity: "1", UnitPrice: "-5"}},
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "bad payment mode",
			req: CreatePurchaseRequest{
				VendorID:    vendorID.String(),
				Items:       []InvoiceItemRequest{{ProductID: activeID.String(), Quantity: "1", UnitPrice: "10"}},
				PaymentMode: "BARTER",
			},
			wantCode: apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreatePurchase(context.Background(), "", tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperror.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}

	// no invoice slipped through any failed attempt
	if len(f.purchases.purchases) != 0 {
		t.Errorf("purchases = %d, want 0", len(f.purchases.purchases))
	}
}

func TestCreatePurchaseMultipleLines(t *testing.T) {
	f := newPurchaseFixture()
	vendorID := f.vendors.add(model.Vendor{Name: "Hardware House", IsActive: true})
	cementID := f.products.add(model.Product{
		SKU: "CEM-50", Name: "Cement 50kg", Unit: model.UnitBag, StockQuantity: dec("5"), IsActive: true,
	})
	sandID := f.products.add(model.Product{
		SKU: "SND-01", Name: "River Sand", Unit: model.UnitCuft, StockQuantity: dec("100"), IsActive: true,
	})

	resp, err := f.service.CreatePurchase(context.Background(), "", CreatePurchaseRequest{
		VendorID: vendorID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: cementID.String(), Quantity: "10", UnitPrice: "350"},
			{ProductID: sandID.String(), Quantity: "50", UnitPrice: "45"},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	// 10*350 + 50*45 = 5750
	if resp.TotalAmount != "5750.0000" {
		t.Errorf("total = %s, want 5750.0000", resp.TotalAmount)
	}
	if len(resp.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Items))
	}
	if len(f.movements.movements) != 2 {
		t.Errorf("movements = %d, want 2 (one per line)", len(f.movements.movements))
	}
}
