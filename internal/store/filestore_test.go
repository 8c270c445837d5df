package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFileStoreSeedsOnFirstLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	fs := NewFileStore(path)

	doc, err := fs.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, doc.Users, 1)
	assert.Empty(t, doc.Sessions)
	assert.Len(t, doc.Orders, 5)
	assert.Len(t, doc.ChartData, 7)
	assert.Equal(t, "#ORD-9021", doc.Orders[0].ID)

	// The seed is written to disk right away.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFileStoreSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	doc, err := fs.Load(ctx)
	require.NoError(t, err)

	doc.Orders = append([]Order{{
		ID:         "#ORD-10001",
		Customer:   "New Customer",
		Amount:     12.34,
		Status:     StatusPending,
		Date:       "02:30 PM",
		Visibility: VisibilityPublic,
	}}, doc.Orders...)
	doc.Sessions = append(doc.Sessions, Session{Token: "tok-1", Username: "company11"})

	require.NoError(t, fs.Save(ctx, doc))

	reloaded, err := fs.Load(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded.Orders, 6)
	assert.Equal(t, "#ORD-10001", reloaded.Orders[0].ID)
	assert.Len(t, reloaded.Sessions, 1)
}

func TestFileStoreWritesPrettyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	fs := NewFileStore(path)

	_, err := fs.Load(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"users\"")
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "db.json")
	fs := NewFileStore(path)

	_, err := fs.Load(context.Background())
	require.NoError(t, err)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	doc, err := ms.Load(ctx)
	require.NoError(t, err)
	doc.Orders[0].Customer = "Mutated"

	fresh, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Jenkins", fresh.Orders[0].Customer)

	require.NoError(t, ms.Save(ctx, doc))
	saved, err := ms.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mutated", saved.Orders[0].Customer)
}

func TestDocumentAuthenticate(t *testing.T) {
	doc := Seed()

	tests := []struct {
		name     string
		username string
		password string
		ok       bool
	}{
		{name: "seed credentials", username: "company11", password: "company123", ok: true},
		{name: "wrong password", username: "company11", password: "nope", ok: false},
		{name: "unknown user", username: "ghost", password: "company123", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, ok := doc.Authenticate(tc.username, tc.password)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.username, user.Username)
			}
		})
	}
}

func TestDocumentAuthenticateBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	doc := &Document{Users: []User{{
		Username: "hashed",
		Password: string(hash),
	}}}

	_, ok := doc.Authenticate("hashed", "secret")
	assert.True(t, ok)

	_, ok = doc.Authenticate("hashed", "wrong")
	assert.False(t, ok)
}

func TestDocumentRemoveSession(t *testing.T) {
	doc := Seed()
	doc.Sessions = []Session{{Token: "a"}, {Token: "b"}, {Token: "c"}}

	doc.RemoveSession("b")
	require.Len(t, doc.Sessions, 2)
	_, ok := doc.FindSession("b")
	assert.False(t, ok)

	// Unknown token is not an error.
	doc.RemoveSession("zzz")
	assert.Len(t, doc.Sessions, 2)
}
