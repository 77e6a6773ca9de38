package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWIF      = "5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTVqvbTLvyTJ"
	testPassword = "correct horse battery staple"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "wallets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	rec := WalletRecord{Name: "alice", Address: "t1abc", Network: "mainnet"}
	require.NoError(t, store.SaveWallet(rec, testWIF, testPassword))

	got, err := store.GetWallet("alice")
	require.NoError(t, err)
	assert.Equal(t, "t1abc", got.Address)
	assert.Equal(t, "mainnet", got.Network)
	assert.False(t, got.CreatedAt.IsZero())

	wif, err := store.RetrieveWIF("alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, testWIF, wif)
}

func TestRetrieveWrongPassword(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveWallet(WalletRecord{Name: "alice"}, testWIF, testPassword))

	_, err := store.RetrieveWIF("alice", "wrong")
	require.Error(t, err)

	// A wrong password is a decryption failure, not a missing key.
	var notFound *KeyNotFoundError
	assert.NotErrorAs(t, err, &notFound)
}

func TestKeyNotFound(t *testing.T) {
	store := openTestStore(t)

	var notFound *KeyNotFoundError

	_, err := store.GetWallet("ghost")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Wallet)

	_, err = store.RetrieveWIF("ghost", testPassword)
	require.ErrorAs(t, err, &notFound)

	err = store.DeleteWallet("ghost")
	require.ErrorAs(t, err, &notFound)
}

func TestListWallets(t *testing.T) {
	store := openTestStore(t)

	records, err := store.ListWallets()
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.SaveWallet(WalletRecord{Name: "alice", Network: "mainnet"}, testWIF, testPassword))
	require.NoError(t, store.SaveWallet(WalletRecord{Name: "bob", Network: "testnet"}, testWIF, testPassword))

	records, err = store.ListWallets()
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestDeleteWallet(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveWallet(WalletRecord{Name: "alice"}, testWIF, testPassword))

	require.NoError(t, store.DeleteWallet("alice"))

	var notFound *KeyNotFoundError
	_, err := store.GetWallet("alice")
	require.ErrorAs(t, err, &notFound)
	_, err = store.RetrieveWIF("alice", testPassword)
	require.ErrorAs(t, err, &notFound)
}

func TestOverwriteWallet(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveWallet(WalletRecord{Name: "alice", Address: "old"}, testWIF, testPassword))
	require.NoError(t, store.SaveWallet(WalletRecord{Name: "alice", Address: "new"}, testWIF, "newpass"))

	got, err := store.GetWallet("alice")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Address)

	_, err = store.RetrieveWIF("alice", testPassword)
	assert.Error(t, err, "old password must no longer unseal the key")

	wif, err := store.RetrieveWIF("alice", "newpass")
	require.NoError(t, err)
	assert.Equal(t, testWIF, wif)
}

func TestSealRoundTrip(t *testing.T) {
	sealed, err := seal([]byte("secret"), testPassword)
	require.NoError(t, err)

	plain, err := open(sealed, testPassword)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)

	// Distinct salts and nonces: sealing twice never produces the same blob.
	sealed2, err := seal([]byte("secret"), testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, sealed2)

	// Tampering fails authentication.
	sealed[len(sealed)-1] ^= 0x01
	_, err = open(sealed, testPassword)
	assert.Error(t, err)

	_, err = open([]byte{0x01}, testPassword)
	assert.Error(t, err)
}
