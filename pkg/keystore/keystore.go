// Package keystore persists wallet metadata and sealed private keys.
//
// A Store is a single bbolt database file with two buckets: `wallets` holds
// JSON metadata records (name, address, network), `keys` holds the WIF for
// each wallet sealed with AES-256-GCM under an scrypt-derived key. The store
// is an explicit handle constructed once at process start and passed into
// signing calls; there is no package-level instance.
//
// Key material leaves the store only through RetrieveWIF, fresh for each
// signing call. The store does not serialize concurrent signing requests
// against the same wallet; that ordering belongs to the caller.
package keystore

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	walletsBucket = []byte("wallets")
	keysBucket    = []byte("keys")
)

// KeyNotFoundError is returned when a wallet has no record in the store.
type KeyNotFoundError struct {
	Wallet string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found for wallet %q", e.Wallet)
}

// WalletRecord is the stored metadata for one wallet.
type WalletRecord struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a handle to one keystore database.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the keystore database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}

	err = db.Update(func(btx *bolt.Tx) error {
		if _, err := btx.CreateBucketIfNotExists(walletsBucket); err != nil {
			return err
		}
		_, err := btx.CreateBucketIfNotExists(keysBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing keystore buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveWallet stores a wallet record and its WIF, sealed under password.
// An existing wallet with the same name is overwritten atomically.
func (s *Store) SaveWallet(rec WalletRecord, wif, password string) error {
	if rec.Name == "" {
		return fmt.Errorf("wallet name must not be empty")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding wallet record: %w", err)
	}

	sealed, err := seal([]byte(wif), password)
	if err != nil {
		return fmt.Errorf("sealing key for wallet %q: %w", rec.Name, err)
	}

	return s.db.Update(func(btx *bolt.Tx) error {
		if err := btx.Bucket(walletsBucket).Put([]byte(rec.Name), meta); err != nil {
			return err
		}
		return btx.Bucket(keysBucket).Put([]byte(rec.Name), sealed)
	})
}

// GetWallet loads the metadata record for a wallet.
func (s *Store) GetWallet(name string) (*WalletRecord, error) {
	var rec WalletRecord
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(walletsBucket).Get([]byte(name))
		if raw == nil {
			return &KeyNotFoundError{Wallet: name}
		}
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListWallets returns every stored wallet record.
func (s *Store) ListWallets() ([]WalletRecord, error) {
	var records []WalletRecord
	err := s.db.View(func(btx *bolt.Tx) error {
		return btx.Bucket(walletsBucket).ForEach(func(_, raw []byte) error {
			var rec WalletRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RetrieveWIF unseals and returns the WIF for a wallet. The caller owns the
// returned string only for the duration of one signing call.
func (s *Store) RetrieveWIF(name, password string) (string, error) {
	var sealed []byte
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(keysBucket).Get([]byte(name))
		if raw == nil {
			return &KeyNotFoundError{Wallet: name}
		}
		sealed = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		return "", err
	}

	plain, err := open(sealed, password)
	if err != nil {
		return "", fmt.Errorf("unsealing key for wallet %q: %w", name, err)
	}
	return string(plain), nil
}

// DeleteWallet removes a wallet record and its sealed key.
func (s *Store) DeleteWallet(name string) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		if btx.Bucket(walletsBucket).Get([]byte(name)) == nil {
			return &KeyNotFoundError{Wallet: name}
		}
		if err := btx.Bucket(walletsBucket).Delete([]byte(name)); err != nil {
			return err
		}
		return btx.Bucket(keysBucket).Delete([]byte(name))
	})
}
