package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
)

func TestCreateVendorWithOpeningBalance(t *testing.T) {
	products := newFakeProductRepo()
	vendors := newFakeVendorRepo()
	purchases := newFakePurchaseRepo(products, vendors)
	service := NewVendorService(vendors, purchases, fakeTxManager{})

	resp, err := service.CreateVendor(context.Background(), uuid.NewString(), CreateVendorRequest{
		Name:           "Steel Traders",
		Phone:          "01711000000",
		OpeningBalance: "15000",
	})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	if resp.Balance != "15000.0000" {
		t.Errorf("balance = %s, want 15000.0000", resp.Balance)
	}

	// the opening debt lives on an itemless invoice so payments can settle it
	if len(purchases.purchases) != 1 {
		t.Fatalf("purchases = %d, want 1 opening balance invoice", len(purchases.purchases))
	}
	var opening *model.Purchase
	for _, p := range purchases.purchases {
		opening = p
	}
	if !opening.IsOpeningBalance {
		t.Error("invoice should be flagged as opening balance")
	}
	if !strings.HasPrefix(opening.InvoiceNo, "OB-") {
		t.Errorf("invoice no = %s, want OB- prefix", opening.InvoiceNo)
	}
	if !opening.TotalAmount.Equal(dec("15000")) || !opening.DueAmount.Equal(dec("15000")) {
		t.Errorf("invoice total/due = %s/%s, want 15000/15000", opening.TotalAmount, opening.DueAmount)
	}
	if !opening.PaidAmount.IsZero() {
		t.Errorf("invoice paid = %s, want 0", opening.PaidAmount)
	}
}

func TestCreateVendorZeroOpeningBalance(t *testing.T) {
	vendors := newFakeVendorRepo()
	purchases := newFakePurchaseRepo(newFakeProductRepo(), vendors)
	service := NewVendorService(vendors, purchases, fakeTxManager{})

	resp, err := service.CreateVendor(context.Background(), "", CreateVendorRequest{Name: "Brick Depot"})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	if resp.Balance != "0.0000" {
		t.Errorf("balance = %s, want 0.0000", resp.Balance)
	}
	if len(purchases.purchases) != 0 {
		t.Errorf("purchases = %d, want 0 without opening balance", len(purchases.purchases))
	}
}

func TestCreateVendorNegativeOpeningBalance(t *testing.T) {
	vendors := newFakeVendorRepo()
	service := NewVendorService(vendors, newFakePurchaseRepo(newFakeProductRepo(), vendors), fakeTxManager{})

	_, err := service.CreateVendor(context.Background(), "", CreateVendorRequest{
		Name:           "Bad Books",
		OpeningBalance: "-100",
	})
	if apperror.CodeOf(err) != apperror.CodeValidation {
		t.Fatalf("code = %s, want VALIDATION", apperror.CodeOf(err))
	}
}

func TestVendorStatement(t *testing.T) {
	products := newFakeProductRepo()
	vendors := newFakeVendorRepo()
	purchases := newFakePurchaseRepo(products, vendors)
	service := NewVendorService(vendors, purchases, fakeTxManager{})

	created, err := service.CreateVendor(context.Background(), "", CreateVendorRequest{
		Name:           "Hardware House",
		OpeningBalance: "5000",
	})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	vendorID := uuid.MustParse(created.ID)

	if err := purchases.Create(context.Background(), &model.Purchase{
		InvoiceNo:   "PUR-LATER",
		VendorID:    vendorID,
		TotalAmount: dec("7000"),
		PaidAmount:  dec("2000"),
		DueAmount:   dec("5000"),
	}); err != nil {
		t.Fatal(err)
	}

	statement, err := service.VendorStatement(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("VendorStatement: %v", err)
	}
	if statement.Party.Name != "Hardware House" {
		t.Errorf("party name = %s, want Hardware House", statement.Party.Name)
	}
	if len(statement.Invoices) != 2 {
		t.Fatalf("statement rows = %d, want 2", len(statement.Invoices))
	}

	var openings int
	for _, row := range statement.Invoices {
		if row.IsOpening {
			openings++
			if row.TotalAmount != "5000.0000" {
				t.Errorf("opening row total = %s, want 5000.0000", row.TotalAmount)
			}
		}
	}
	if openings != 1 {
		t.Errorf("opening rows = %d, want 1", openings)
	}
}

func TestVendorStatementUnknownVendor(t *testing.T) {
	vendors := newFakeVendorRepo()
	service := NewVendorService(vendors, newFakePurchaseRepo(newFakeProductRepo(), vendors), fakeTxManager{})

	_, err := service.VendorStatement(context.Background(), uuid.NewString())
	if apperror.CodeOf(err) != apperror.CodeNotFound {
		t.Fatalf("code = %s, want NOT_FOUND", apperror.CodeOf(err))
	}
}

func TestUpdateVendorPatchesOnlyProvidedFields(t *testing.T) {
	vendors := newFakeVendorRepo()
	service := NewVendorService(vendors, newFakePurchaseRepo(newFakeProductRepo(), vendors), fakeTxManager{})

	vendorID := vendors.add(model.Vendor{
		Name: "Old Name", Phone: "01700000000", Address: "Old Town", IsActive: true,
	})

	inactive := false
	resp, err := service.UpdateVendor(context.Background(), vendorID.String(), UpdatePartyRequest{
		Name:     "New Name",
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateVendor: %v", err)
	}
	if resp.Name != "New Name" || resp.Phone != "01700000000" || resp.Address != "Old Town" {
		t.Errorf("unexpected patch result: %+v", resp)
	}
	if resp.IsActive {
		t.Error("vendor should be inactive")
	}
}

func TestCreateCustomerWithOpeningBalance(t *testing.T) {
	products := newFakeProductRepo()
	customers := newFakeCustomerRepo()
	sales := newFakeSaleRepo(products, customers)
	service := NewCustomerService(customers, sales, fakeTxManager{})

	resp, err := service.CreateCustomer(context.Background(), "", CreateCustomerRequest{
		Name:           "Rahim Construction",
		OpeningBalance: "8000",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if resp.Balance != "8000.0000" {
		t.Errorf("balance = %s, want 8000.0000", resp.Balance)
	}

	if len(sales.sales) != 1 {
		t.Fatalf("sales = %d, want 1 opening balance invoice", len(sales.sales))
	}
	var opening *model.Sale
	for _, s := range sales.sales {
		opening = s
	}
	if !opening.IsOpeningBalance || opening.CustomerID == nil {
		t.Errorf("unexpected opening invoice: %+v", opening)
	}
	if !strings.HasPrefix(opening.InvoiceNo, "OB-") {
		t.Errorf("invoice no = %s, want OB- prefix", opening.InvoiceNo)
	}
	if !opening.DueAmount.Equal(dec("8000")) {
		t.Errorf("invoice due = %s, want 8000", opening.DueAmount)
	}
}
