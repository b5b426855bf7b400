package service

import (
	"context"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes. No locking: service tests are single
// goroutine, the concurrency guarantees live in the SQL layer.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- products ---

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) add(p model.Product) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copied := p
	r.products[copied.ID] = &copied
	return copied.ID
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.IsActive = false
	}
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProductRepo) List(_ context.Context, page, limit int, search string, activeOnly bool) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if activeOnly && !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(p.SKU), strings.ToLower(search)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, stock decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity = stock
	return nil
}

func (r *fakeProductRepo) ListBelowMinimum(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.IsActive && p.StockQuantity.LessThanOrEqual(p.MinimumStockLevel) {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- parties ---

type fakeVendorRepo struct {
	vendors map[uuid.UUID]*model.Vendor
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: make(map[uuid.UUID]*model.Vendor)}
}

func (r *fakeVendorRepo) add(v model.Vendor) uuid.UUID {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	copied := v
	r.vendors[copied.ID] = &copied
	return copied.ID
}

func (r *fakeVendorRepo) Create(_ context.Context, vendor *model.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	copied := *vendor
	r.vendors[vendor.ID] = &copied
	return nil
}

func (r *fakeVendorRepo) Update(_ context.Context, vendor *model.Vendor) error {
	copied := *vendor
	r.vendors[vendor.ID] = &copied
	return nil
}

func (r *fakeVendorRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if v, ok := r.vendors[id]; ok {
		v.IsActive = false
	}
	return nil
}

func (r *fakeVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVendorRepo) List(_ context.Context, page, limit int, search string) ([]model.Vendor, int64, error) {
	var out []model.Vendor
	for _, v := range r.vendors {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVendorRepo) IncrementBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	v, ok := r.vendors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Balance = v.Balance.Add(delta)
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *fakeCustomerRepo) add(c model.Customer) uuid.UUID {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	copied := c
	r.customers[copied.ID] = &copied
	return copied.ID
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *model.Customer) error {
	copied := *customer
	r.customers[customer.ID] = &copied
	return nil
}

func (r *fakeCustomerRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if c, ok := r.customers[id]; ok {
		c.IsActive = false
	}
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, page, limit int, search string) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) IncrementBalance(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Balance = c.Balance.Add(delta)
	return nil
}

// --- invoices ---

type fakePurchaseRepo struct {
	purchases map[uuid.UUID]*model.Purchase
	items     map[uuid.UUID][]model.PurchaseItem
	products  *fakeProductRepo
	vendors   *fakeVendorRepo
}

func newFakePurchaseRepo(products *fakeProductRepo, vendors *fakeVendorRepo) *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases: make(map[uuid.UUID]*model.Purchase),
		items:     make(map[uuid.UUID][]model.PurchaseItem),
		products:  products,
		vendors:   vendors,
	}
}

func (r *fakePurchaseRepo) Create(_ context.Context, purchase *model.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	purchase.CreatedAt = time.Now()
	copied := *purchase
	r.purchases[purchase.ID] = &copied
	return nil
}

func (r *fakePurchaseRepo) CreateItem(_ context.Context, item *model.PurchaseItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.PurchaseID] = append(r.items[item.PurchaseID], *item)
	return nil
}

func (r *fakePurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePurchaseRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	purchase, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, item := range r.items[id] {
		if r.products != nil {
			if product, ok := r.products.products[item.ProductID]; ok {
				copied := *product
				item.Product = &copied
			}
		}
		purchase.Items = append(purchase.Items, item)
	}
	if r.vendors != nil {
		if vendor, ok := r.vendors.vendors[purchase.VendorID]; ok {
			copied := *vendor
			purchase.Vendor = &copied
		}
	}
	return purchase, nil
}

func (r *fakePurchaseRepo) List(_ context.Context, filter repository.PurchaseListFilter) ([]model.Purchase, int64, error) {
	var out []model.Purchase
	for _, p := range r.purchases {
		if filter.VendorID != nil && p.VendorID != *filter.VendorID {
			continue
		}
		if filter.DueOnly && !p.DueAmount.IsPositive() {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePurchaseRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, p := range r.purchases {
		if p.VendorID == vendorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) ApplyPayment(_ context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	p, ok := r.purchases[id]
	if !ok || p.DueAmount.LessThan(amount) {
		return false, nil
	}
	p.PaidAmount = p.PaidAmount.Add(amount)
	p.DueAmount = p.DueAmount.Sub(amount)
	return true, nil
}

type fakeSaleRepo struct {
	sales     map[uuid.UUID]*model.Sale
	items     map[uuid.UUID][]model.SaleItem
	products  *fakeProductRepo
	customers *fakeCustomerRepo
}

func newFakeSaleRepo(products *fakeProductRepo, customers *fakeCustomerRepo) *fakeSaleRepo {
	return &fakeSaleRepo{
		sales:     make(map[uuid.UUID]*model.Sale),
		items:     make(map[uuid.UUID][]model.SaleItem),
		products:  products,
		customers: customers,
	}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *model.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = time.Now()
	copied := *sale
	r.sales[sale.ID] = &copied
	return nil
}

func (r *fakeSaleRepo) CreateItem(_ context.Context, item *model.SaleItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[item.SaleID] = append(r.items[item.SaleID], *item)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSaleRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, item := range r.items[id] {
		if r.products != nil {
			if product, ok := r.products.products[item.ProductID]; ok {
				copied := *product
				item.Product = &copied
			}
		}
		sale.Items = append(sale.Items, item)
	}
	if r.customers != nil && sale.CustomerID != nil {
		if customer, ok := r.customers.customers[*sale.CustomerID]; ok {
			copied := *customer
			sale.Customer = &copied
		}
	}
	return sale, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter repository.SaleListFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filter.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *filter.CustomerID) {
			continue
		}
		if filter.WalkInOnly && !s.IsWalkIn {
			continue
		}
		if filter.DueOnly && !s.DueAmount.IsPositive() {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSaleRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) ApplyPayment(_ context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	s, ok := r.sales[id]
	if !ok || s.DueAmount.LessThan(amount) {
		return false, nil
	}
	s.PaidAmount = s.PaidAmount.Add(amount)
	s.DueAmount = s.DueAmount.Sub(amount)
	return true, nil
}

// --- append-only logs ---

type fakeMovementRepo struct {
	movements []model.StockMovement
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *model.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = time.Now()
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

type fakePaymentRepo struct {
	payments []model.PaymentHistory
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *model.PaymentHistory) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *fakePaymentRepo) ListForPurchase(_ context.Context, purchaseID uuid.UUID) ([]model.PaymentHistory, error) {
	var out []model.PaymentHistory
	for _, p := range r.payments {
		if p.PurchaseID != nil && *p.PurchaseID == purchaseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListForSale(_ context.Context, saleID uuid.UUID) ([]model.PaymentHistory, error) {
	var out []model.PaymentHistory
	for _, p := range r.payments {
		if p.SaleID != nil && *p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTransactionRepo struct {
	transactions []model.Transaction
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *model.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tx.CreatedAt = time.Now()
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *fakeTransactionRepo) ListBetween(_ context.Context, start, end time.Time, page, limit int) ([]model.Transaction, int64, error) {
	return r.transactions, int64(len(r.transactions)), nil
}

type fakeSettingsRepo struct {
	settings model.SystemSettings
}

func (r *fakeSettingsRepo) Get(_ context.Context) (*model.SystemSettings, error) {
	copied := r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, settings *model.SystemSettings) error {
	r.settings = *settings
	return nil
}

// recordingNotifier captures stock change notifications.
type recordingNotifier struct {
	events []uuid.UUID
}

func (n *recordingNotifier) StockChanged(productID uuid.UUID, _ string, _, _ decimal.Decimal) {
	n.events = append(n.events, productID)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
