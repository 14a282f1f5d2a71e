package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/ssh"
	gossh "golang.org/x/crypto/ssh"
)

func newKey(t *testing.T) gossh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	return key
}

func TestLoadAuthorizedKeys(t *testing.T) {
	a, b := newKey(t), newKey(t)
	body := "# team keys\n" +
		string(gossh.MarshalAuthorizedKey(a)) +
		"\n" +
		string(gossh.MarshalAuthorizedKey(b))
	path := filepath.Join(t.TempDir(), "authorized_keys")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	keys, err := loadAuthorizedKeys(path)
	if err != nil {
		t.Fatalf("loadAuthorizedKeys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	if !ssh.KeysEqual(keys[0], a) || !ssh.KeysEqual(keys[1], b) {
		t.Error("parsed keys do not match the file")
	}
	if ssh.KeysEqual(keys[0], newKey(t)) {
		t.Error("unrelated key compared equal")
	}
}

func TestLoadAuthorizedKeysMissingFile(t *testing.T) {
	if _, err := loadAuthorizedKeys(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
