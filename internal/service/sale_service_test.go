package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
)

type saleFixture struct {
	service   SaleService
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	sales     *fakeSaleRepo
	movements *fakeMovementRepo
	payments  *fakePaymentRepo
	txs       *fakeTransactionRepo
	settings  *fakeSettingsRepo
	notifier  *recordingNotifier
}

func newSaleFixture() *saleFixture {
	products := newFakeProductRepo()
	customers := newFakeCustomerRepo()
	sales := newFakeSaleRepo(products, customers)
	movements := &fakeMovementRepo{}
	payments := &fakePaymentRepo{}
	txs := &fakeTransactionRepo{}
	settings := &fakeSettingsRepo{}
	notifier := &recordingNotifier{}

	return &saleFixture{
		service: NewSaleService(sales, customers, products, movements,
			payments, txs, settings, fakeTxManager{}, notifier),
		products:  products,
		customers: customers,
		sales:     sales,
		movements: movements,
		payments:  payments,
		txs:       txs,
		settings:  settings,
		notifier:  notifier,
	}
}

func TestCreateSaleRegisteredCustomer(t *testing.T) {
	f := newSaleFixture()
	customerID := f.customers.add(model.Customer{Name: "Rahim Construction", Balance: dec("500"), IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "CEM-50", Name: "Cement 50kg", Unit: model.UnitBag,
		StockQuantity: dec("100"), IsActive: true,
	})

	resp, err := f.service.CreateSale(context.Background(), uuid.NewString(), CreateSaleRequest{
		CustomerID: customerID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: productID.String(), Quantity: "30", UnitPrice: "400"},
		},
		AdditionalCharges: "500",
		ReceivedAmount:    "4500",
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	// 30*400 + 500 = 12500, received 4500, due 8000
	if resp.TotalAmount != "12500.0000" || resp.DueAmount != "8000.0000" {
		t.Errorf("total/due = %s/%s, want 12500.0000/8000.0000", resp.TotalAmount, resp.DueAmount)
	}

	product, _ := f.products.FindByID(context.Background(), productID)
	if !product.StockQuantity.Equal(dec("70")) {
		t.Errorf("stock = %s, want 70", product.StockQuantity)
	}

	movement := f.movements.movements[0]
	if movement.MovementType != model.MovementSale {
		t.Errorf("movement type = %s, want SALE", movement.MovementType)
	}
	if !movement.BalanceBefore.Equal(dec("100")) || !movement.BalanceAfter.Equal(dec("70")) {
		t.Errorf("movement before/after = %s/%s, want 100/70", movement.BalanceBefore, movement.BalanceAfter)
	}

	customer, _ := f.customers.FindByID(context.Background(), customerID)
	if !customer.Balance.Equal(dec("8500")) {
		t.Errorf("customer balance = %s, want 8500", customer.Balance)
	}

	// creation-time payment row carries the new balance on both sides
	payment := f.payments.payments[0]
	if !payment.BalanceBefore.Equal(dec("8500")) || !payment.BalanceAfter.Equal(dec("8500")) {
		t.Errorf("payment snapshot = %s/%s, want 8500/8500", payment.BalanceBefore, payment.BalanceAfter)
	}

	if len(f.txs.transactions) != 1 || f.txs.transactions[0].TxType != model.TxPaymentIn {
		t.Errorf("expected one PAYMENT_IN transaction, got %+v", f.txs.transactions)
	}
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	f := newSaleFixture()
	customerID := f.customers.add(model.Customer{Name: "Karim Brothers", IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "ROD-12", Name: "Steel Rod 12mm", Unit: model.UnitTon,
		StockQuantity: dec("5"), IsActive: true,
	})

	// Two lines for the same product; each fits, the aggregate does not.
	_, err := f.service.CreateSale(context.Background(), "", CreateSaleRequest{
		CustomerID: customerID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: productID.String(), Quantity: "3", UnitPrice: "80000"},
			{ProductID: productID.String(), Quantity: "3", UnitPrice: "80000"},
		},
	})
	if apperror.CodeOf(err) != apperror.CodeInsufficientStock {
		t.Fatalf("code = %s, want INSUFFICIENT_STOCK", apperror.CodeOf(err))
	}

	// Nothing written: the check runs before any stock movement.
	product, _ := f.products.FindByID(context.Background(), productID)
	if !product.StockQuantity.Equal(dec("5")) {
		t.Errorf("stock = %s, want 5 untouched", product.StockQuantity)
	}
	if len(f.movements.movements) != 0 || len(f.sales.sales) != 0 {
		t.Errorf("expected no writes, got %d movements %d sales", len(f.movements.movements), len(f.sales.sales))
	}
	customer, _ := f.customers.FindByID(context.Background(), customerID)
	if !customer.Balance.IsZero() {
		t.Errorf("customer balance = %s, want 0", customer.Balance)
	}
}

func TestCreateSaleExactStock(t *testing.T) {
	f := newSaleFixture()
	customerID := f.customers.add(model.Customer{Name: "Exact Buyer", IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "TIL-01", Name: "Floor Tile", Unit: model.UnitSqft,
		StockQuantity: dec("200"), IsActive: true,
	})

	// Selling exactly the available quantity succeeds and lands on zero.
	_, err := f.service.CreateSale(context.Background(), "", CreateSaleRequest{
		CustomerID: customerID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: productID.String(), Quantity: "200", UnitPrice: "55"},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	product, _ := f.products.FindByID(context.Background(), productID)
	if !product.StockQuantity.IsZero() {
		t.Errorf("stock = %s, want 0", product.StockQuantity)
	}
}

func TestCreateSaleWalkIn(t *testing.T) {
	f := newSaleFixture()
	productID := f.products.add(model.Product{
		SKU: "PNT-01", Name: "Paint 1L", Unit: model.UnitPiece,
		StockQuantity: dec("40"), IsActive: true,
	})

	t.Run("must be fully paid", func(t *testing.T) {
		_, err := f.service.CreateSale(context.Background(), "", CreateSaleRequest{
			WalkInName: "Walk-in",
			Items: []InvoiceItemRequest{
				{ProductID: productID.String(), Quantity: "2", UnitPrice: "450"},
			},
			ReceivedAmount: "500",
		})
		if apperror.CodeOf(err) != apperror.CodeWalkInNotFullyPaid {
			t.Fatalf("code = %s, want WALK_IN_NOT_FULLY_PAID", apperror.CodeOf(err))
		}
	})

	t.Run("fully paid succeeds", func(t *testing.T) {
		resp, err := f.service.CreateSale(context.Background(), "", CreateSaleRequest{
			WalkInName: "Walk-in",
			Items: []InvoiceItemRequest{
				{ProductID: productID.String(), Quantity: "2", UnitPrice: "450"},
			},
			ReceivedAmount: "900",
		})
		if err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
		if !resp.IsWalkIn || resp.CustomerID != nil {
			t.Errorf("expected walk-in sale without customer, got %+v", resp)
		}
		if resp.DueAmount != "0.0000" {
			t.Errorf("due = %s, want 0.0000", resp.DueAmount)
		}

		// walk-in snapshot: total down to zero
		payment := f.payments.payments[len(f.payments.payments)-1]
		if !payment.BalanceBefore.Equal(dec("900")) || !payment.BalanceAfter.IsZero() {
			t.Errorf("payment snapshot = %s/%s, want 900/0", payment.BalanceBefore, payment.BalanceAfter)
		}
	})
}

func TestCreateSaleValidation(t *testing.T) {
	f := newSaleFixture()
	customerID := f.customers.add(model.Customer{Name: "Valid Buyer", IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "GLS-01", Name: "Glass Sheet", Unit: model.UnitSqft,
		StockQuantity: dec("50"), IsActive: true,
	})
	item := InvoiceItemRequest{ProductID: productID.String(), Quantity: "1", UnitPrice: "100"}

	tests := []struct {
		name     string
		req      CreateSaleRequest
		wantCode apperror.Code
	}{
		{
			name:     "both customer and walk-in name",
			req:      CreateSaleRequest{CustomerID: customerID.String(), WalkInName: "Someone", Items: []InvoiceItemRequest{item}},
			wantCode: apperror.CodeValidation,
		},
		{
			name:     "neither customer nor walk-in name",
			req:      CreateSaleRequest{Items: []InvoiceItemRequest{item}},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "received exceeds total",
			req: CreateSaleRequest{
				CustomerID:     customerID.String(),
				Items:          []InvoiceItemRequest{item},
				ReceivedAmount: "150",
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name:     "unknown customer",
			req:      CreateSaleRequest{CustomerID: uuid.NewString(), Items: []InvoiceItemRequest{item}},
			wantCode: apperror.CodeNotFound,
		},
		{
			name: "negative additional charges",
			req: CreateSaleRequest{
				CustomerID:        customerID.String(),
				Items:             []InvoiceItemRequest{item},
				AdditionalCharges: "-10",
			},
			wantCode: apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateSale(context.Background(), "", tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperror.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestCreateSaleStockCheckIgnoresNegativeStockSetting(t *testing.T) {
	f := newSaleFixture()
	f.settings.settings.AllowNegativeStock = true
	customerID := f.customers.add(model.Customer{Name: "Big Order", IsActive: true})
	productID := f.products.add(model.Product{
		SKU: "CEM-50", Name: "Cement 50kg", Unit: model.UnitBag,
		StockQuantity: dec("10"), IsActive: true,
	})

	// Over-selling at creation is blocked regardless of the setting.
	_, err := f.service.CreateSale(context.Background(), "", CreateSaleRequest{
		CustomerID: customerID.String(),
		Items: []InvoiceItemRequest{
			{ProductID: productID.String(), Quantity: "11", UnitPrice: "350"},
		},
	})
	if apperror.CodeOf(err) != apperror.CodeInsufficientStock {
		t.Fatalf("code = %s, want INSUFFICIENT_STOCK", apperror.CodeOf(err))
	}
}
