package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"sahasatis/backend/internal/domain"
	"sahasatis/backend/internal/store"
)

// Store is the in-memory repository used for dev mode and tests.
type Store struct {
	mu              sync.RWMutex
	products        map[string]domain.Product
	productOrder    []string
	customers       map[string]domain.Customer
	customerOrder   []string
	transactions    []domain.Transaction
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_REP_PASSWORD
// environment variables; hardcoded dev defaults are used with a warning
// when unset.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	repPwd := envOr("SEED_REP_PASSWORD", "rep123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_REP_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_REP_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"rep", repPwd, "rep"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func price(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// NewSeeded returns a store pre-loaded with a demo catalog and customer
// book for field-sales runs without a database.
func NewSeeded() *Store {
	products := []domain.Product{
		{ID: "PRD-001", Name: "Ayçiçek Yağı 5L", Description: "Rafine ayçiçek yağı", Price: price("289.90"), Stock: 48},
		{ID: "PRD-002", Name: "Un 25kg", Description: "Ekmeklik buğday unu", Price: price("612.50"), Stock: 30},
		{ID: "PRD-003", Name: "Toz Şeker 50kg", Description: "Kristal toz şeker", Price: price("1240.00"), Stock: 22},
		{ID: "PRD-004", Name: "Çay 1kg", Description: "Dökme siyah çay", Price: price("174.25"), Stock: 85},
		{ID: "PRD-005", Name: "Makarna 500g Koli", Description: "20'li burgu makarna kolisi", Price: price("196.00"), Stock: 64},
		{ID: "PRD-006", Name: "Salça 5kg", Description: "Domates salçası teneke", Price: price("348.75"), Stock: 40},
		{ID: "PRD-007", Name: "Pirinç 25kg", Description: "Baldo pirinç çuval", Price: price("987.00"), Stock: 18},
		{ID: "PRD-008", Name: "Zeytin 10kg", Description: "Gemlik siyah zeytin", Price: price("864.30"), Stock: 15},
		{ID: "PRD-009", Name: "Deterjan 10kg", Description: "Matik toz deterjan", Price: price("421.60"), Stock: 52},
		{ID: "PRD-010", Name: "Su 0.5L Koli", Description: "24'lü pet su kolisi", Price: price("78.00"), Stock: 120},
	}

	customers := []domain.Customer{
		{ID: "CUS-001", Name: "Yılmaz Market", TaxNumber: "1234567801", Address: "Atatürk Cad. No:12, Kadıköy", Phone: "0216 345 67 01", Balance: price("4250.00")},
		{ID: "CUS-002", Name: "Demir Gıda Ltd.", TaxNumber: "1234567802", Address: "Sanayi Sit. B Blok No:4, Ümraniye", Phone: "0216 345 67 02", Balance: price("-1180.50")},
		{ID: "CUS-003", Name: "Kaya Bakkaliyesi", TaxNumber: "1234567803", Address: "Çınar Sok. No:8, Maltepe", Phone: "0216 345 67 03", Balance: price("760.25")},
		{ID: "CUS-004", Name: "Öztürk Şarküteri", TaxNumber: "1234567804", Address: "İstasyon Cad. No:45, Pendik", Phone: "0216 345 67 04", Balance: price("0.00")},
		{ID: "CUS-005", Name: "Aslan Toptan Gıda", TaxNumber: "1234567805", Address: "Hal İçi No:102, Ataşehir", Phone: "0216 345 67 05", Balance: price("12890.00")},
	}

	productMap := make(map[string]domain.Product, len(products))
	productOrder := make([]string, 0, len(products))
	for _, p := range products {
		productMap[p.ID] = p
		productOrder = append(productOrder, p.ID)
	}

	customerMap := make(map[string]domain.Customer, len(customers))
	customerOrder := make([]string, 0, len(customers))
	for _, c := range customers {
		customerMap[c.ID] = c
		customerOrder = append(customerOrder, c.ID)
	}

	return &Store{
		products:        productMap,
		productOrder:    productOrder,
		customers:       customerMap,
		customerOrder:   customerOrder,
		transactions:    make([]domain.Transaction, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productOrder))
	for _, id := range s.productOrder {
		products = append(products, s.products[id])
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	all, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	matched := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), query) || strings.Contains(strings.ToLower(p.ID), query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		customers = append(customers, s.customers[id])
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return strings.Compare(a.Name, b.Name)
	})
	return customers, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyCustomer := customer
	return &copyCustomer, nil
}

func (s *Store) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	all, err := s.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	matched := make([]domain.Customer, 0, len(all))
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Name), query) || strings.Contains(c.TaxNumber, query) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (s *Store) AppendTransaction(_ context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.transactions {
		if existing.ID == tx.ID {
			// Appending the same id twice would mutate history; refuse.
			return store.ErrConflict
		}
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, len(s.transactions))
	copy(result, s.transactions)
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrNotFound
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
