package tunnel

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

// candidateKeys are the unencrypted-or-promptable key files tried when
// the user gives no explicit auth flags, newest algorithm first.
var candidateKeys = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// BuildAuthMethods turns the tunnel configuration into the ordered
// auth chain handed to the SSH handshake: explicit key file, then
// agent, then interactive password, each only when asked for.  With no
// flags at all it falls back to probing the agent and the standard
// key files, so a plain -T user@bastion works on a typical workstation.
func BuildAuthMethods(cfg *SSHConfig) ([]ssh.AuthMethod, error) {
	var chain []ssh.AuthMethod

	if cfg.KeyPath != "" {
		m, err := keyFileAuth(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", cfg.KeyPath, err)
		}
		chain = append(chain, m)
	}

	if cfg.UseAgent {
		m, err := agentAuth()
		if err != nil {
			return nil, fmt.Errorf("ssh-agent: %w", err)
		}
		chain = append(chain, m)
	}

	if cfg.PromptPass {
		pass, err := promptSecret("SSH password: ")
		if err != nil {
			return nil, fmt.Errorf("password: %w", err)
		}
		chain = append(chain, ssh.Password(pass))
	}

	if len(chain) == 0 {
		chain = implicitAuthChain()
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf(
			"no SSH authentication available; use --ssh-key, --ssh-password, or --ssh-agent")
	}
	return chain, nil
}

// ── individual auth builders ─────────────────────────────────────────

// keyFileAuth loads a private key from disk, prompting for the
// passphrase when the key turns out to be encrypted.
func keyFileAuth(path string) (ssh.AuthMethod, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(pem)
	if err == nil {
		return ssh.PublicKeys(signer), nil
	}
	if _, encrypted := err.(*ssh.PassphraseMissingError); !encrypted {
		return nil, fmt.Errorf("parse: %w", err)
	}

	pass, err := promptSecret(fmt.Sprintf("Enter passphrase for %s: ", path))
	if err != nil {
		return nil, fmt.Errorf("passphrase: %w", err)
	}
	signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(pass))
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return ssh.PublicKeys(signer), nil
}

// agentAuth defers signing to a running ssh-agent.
func agentAuth() (ssh.AuthMethod, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, fmt.Errorf("SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, fmt.Errorf("agent socket %s: %w", sock, err)
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

// promptSecret reads a line from the terminal with echo disabled.
func promptSecret(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// implicitAuthChain probes for auth sources that need no configuration:
// a reachable agent plus any of the standard key files in ~/.ssh.
// Unreadable candidates are skipped silently; the handshake will report
// the failure if nothing usable was found.
func implicitAuthChain() []ssh.AuthMethod {
	var chain []ssh.AuthMethod

	if m, err := agentAuth(); err == nil {
		chain = append(chain, m)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return chain
	}
	for _, name := range candidateKeys {
		path := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if m, err := keyFileAuth(path); err == nil {
			chain = append(chain, m)
		}
	}
	return chain
}

// ── host-key verification ────────────────────────────────────────────

// hostKeyCallback picks the host-key policy for the gateway handshake.
// Strict mode verifies against known_hosts; the default accepts any
// key, which suits the throwaway lab endpoints gotx is pointed at.
func hostKeyCallback(cfg *SSHConfig) (ssh.HostKeyCallback, error) {
	if !cfg.StrictHostKey {
		//nolint:gosec // non-strict mode is an explicit user choice
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := cfg.KnownHosts
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("known_hosts %s: %w", path, err)
	}
	return cb, nil
}
