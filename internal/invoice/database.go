package invoice

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ocrdesk/invoice-tracker/internal/parsing"
)

const (
	invoiceBucketName  = "invoices"
	itemBucketName     = "invoice_items"
	supplierBucketName = "suppliers"
	customerBucketName = "customers"
)

// DB defines the interface for database operations
type DB interface {
	// SaveInvoice saves an invoice header keyed by invoice number
	SaveInvoice(invoice *Invoice) error

	// GetInvoice retrieves an invoice by number
	GetInvoice(number string) (*Invoice, error)

	// ListInvoices returns all invoices
	ListInvoices() ([]*Invoice, error)

	// DeleteInvoice removes an invoice from the database
	DeleteInvoice(number string) error

	// SaveItems stores the line items of an invoice, preserving order
	SaveItems(number string, items []parsing.LineItem) error

	// GetItems retrieves the line items of an invoice in stored order
	GetItems(number string) ([]parsing.LineItem, error)

	// DeleteItems removes the line items of an invoice
	DeleteItems(number string) error

	// GetOrCreateSupplier resolves a supplier to its surrogate ID,
	// creating it on first sight
	GetOrCreateSupplier(supplier Supplier) (uint64, error)

	// GetSupplier retrieves a supplier by surrogate ID
	GetSupplier(id uint64) (*Supplier, error)

	// GetOrCreateCustomer resolves a customer to its surrogate ID,
	// creating it on first sight
	GetOrCreateCustomer(customer Customer) (uint64, error)

	// GetCustomer retrieves a customer by surrogate ID
	GetCustomer(id uint64) (*Customer, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{invoiceBucketName, itemBucketName, supplierBucketName, customerBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveInvoice saves an invoice header keyed by invoice number
func (b *BoltDB) SaveInvoice(invoice *Invoice) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucketName))
		data, err := json.Marshal(invoice)
		if err != nil {
			return fmt.Errorf("marshaling invoice: %w", err)
		}
		return bucket.Put([]byte(invoice.InvoiceNumber), data)
	})
}

// GetInvoice retrieves an invoice by number
func (b *BoltDB) GetInvoice(number string) (*Invoice, error) {
	var invoice *Invoice
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucketName))
		data := bucket.Get([]byte(number))
		if data == nil {
			return fmt.Errorf("invoice not found: %s", number)
		}
		return json.Unmarshal(data, &invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// ListInvoices returns all invoices
func (b *BoltDB) ListInvoices() ([]*Invoice, error) {
	invoices := make([]*Invoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var invoice Invoice
			if err := json.Unmarshal(v, &invoice); err != nil {
				return fmt.Errorf("unmarshaling invoice: %w", err)
			}
			invoices = append(invoices, &invoice)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice from the database
func (b *BoltDB) DeleteInvoice(number string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(invoiceBucketName))
		return bucket.Delete([]byte(number))
	})
}

// SaveItems stores the line items of an invoice, preserving order
func (b *BoltDB) SaveItems(number string, items []parsing.LineItem) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(itemBucketName))
		data, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("marshaling items: %w", err)
		}
		return bucket.Put([]byte(number), data)
	})
}

// GetItems retrieves the line items of an invoice in stored order
func (b *BoltDB) GetItems(number string) ([]parsing.LineItem, error) {
	items := make([]parsing.LineItem, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(itemBucketName))
		data := bucket.Get([]byte(number))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItems removes the line items of an invoice
func (b *BoltDB) DeleteItems(number string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(itemBucketName))
		return bucket.Delete([]byte(number))
	})
}

// GetOrCreateSupplier resolves a supplier to its surrogate ID. Suppliers match
// on case-insensitive name; when both sides carry an email it must match too.
func (b *BoltDB) GetOrCreateSupplier(supplier Supplier) (uint64, error) {
	var id uint64
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(supplierBucketName))
		var found *Supplier
		err := bucket.ForEach(func(k, v []byte) error {
			var existing Supplier
			if err := json.Unmarshal(v, &existing); err != nil {
				return fmt.Errorf("unmarshaling supplier: %w", err)
			}
			if !strings.EqualFold(existing.Name, supplier.Name) {
				return nil
			}
			if existing.Email != "" && supplier.Email != "" && !strings.EqualFold(existing.Email, supplier.Email) {
				return nil
			}
			found = &existing
			return nil
		})
		if err != nil {
			return err
		}
		if found != nil {
			id = found.ID
			return nil
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating supplier id: %w", err)
		}
		supplier.ID = seq
		data, err := json.Marshal(supplier)
		if err != nil {
			return fmt.Errorf("marshaling supplier: %w", err)
		}
		if err := bucket.Put(itob(seq), data); err != nil {
			return err
		}
		id = seq
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetSupplier retrieves a supplier by surrogate ID
func (b *BoltDB) GetSupplier(id uint64) (*Supplier, error) {
	var supplier *Supplier
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(supplierBucketName))
		data := bucket.Get(itob(id))
		if data == nil {
			return fmt.Errorf("supplier not found: %d", id)
		}
		return json.Unmarshal(data, &supplier)
	})
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// GetOrCreateCustomer resolves a customer to its surrogate ID. Customers match
// on case-insensitive name; when both sides carry a billing address it must
// match too.
func (b *BoltDB) GetOrCreateCustomer(customer Customer) (uint64, error) {
	var id uint64
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(customerBucketName))
		var found *Customer
		err := bucket.ForEach(func(k, v []byte) error {
			var existing Customer
			if err := json.Unmarshal(v, &existing); err != nil {
				return fmt.Errorf("unmarshaling customer: %w", err)
			}
			if !strings.EqualFold(existing.Name, customer.Name) {
				return nil
			}
			if existing.BillingAddress != "" && customer.BillingAddress != "" &&
				!strings.EqualFold(existing.BillingAddress, customer.BillingAddress) {
				return nil
			}
			found = &existing
			return nil
		})
		if err != nil {
			return err
		}
		if found != nil {
			id = found.ID
			return nil
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating customer id: %w", err)
		}
		customer.ID = seq
		data, err := json.Marshal(customer)
		if err != nil {
			return fmt.Errorf("marshaling customer: %w", err)
		}
		if err := bucket.Put(itob(seq), data); err != nil {
			return err
		}
		id = seq
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetCustomer retrieves a customer by surrogate ID
func (b *BoltDB) GetCustomer(id uint64) (*Customer, error) {
	var customer *Customer
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(customerBucketName))
		data := bucket.Get(itob(id))
		if data == nil {
			return fmt.Errorf("customer not found: %d", id)
		}
		return json.Unmarshal(data, &customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}

func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
