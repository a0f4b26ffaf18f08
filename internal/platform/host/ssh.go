package host

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/botzner/internal/util/retry"
)

// SSHRunner executes commands on a remote host over SSH.
type SSHRunner struct {
	addr       string
	user       string
	privateKey []byte

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHRunner creates a runner for the given host. The connection is
// established lazily on first use and reused across commands.
func NewSSHRunner(address string, port int, user string, privateKey []byte) *SSHRunner {
	return &SSHRunner{
		addr:       net.JoinHostPort(address, strconv.Itoa(port)),
		user:       user,
		privateKey: privateKey,
	}
}

// connect dials the host, retrying with backoff. Hosts fresh out of a
// reboot commonly refuse the first few connection attempts.
func (r *SSHRunner) connect(ctx context.Context) (*ssh.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	signer, err := ssh.ParsePrivateKey(r.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	config := &ssh.ClientConfig{
		User: r.user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // #nosec G106 -- single-host tool, key pinning is not configured
		Timeout:         10 * time.Second,
	}

	var client *ssh.Client
	err = retry.Do(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", r.addr, config)
		return dialErr
	}, retry.WithAttempts(6), retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh %s: %w", r.addr, err)
	}

	r.client = client
	return client, nil
}

// Run implements Runner.
func (r *SSHRunner) Run(ctx context.Context, command string) (string, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return "", err
	}

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(command)
	if err != nil {
		return string(output), fmt.Errorf("command %q failed: %w, output: %s", command, err, output)
	}

	return string(output), nil
}

// Upload implements Runner. Content is streamed over stdin into
// install(1), which writes atomically with the requested mode.
func (r *SSHRunner) Upload(ctx context.Context, content []byte, path string, mode string) error {
	client, err := r.connect(ctx)
	if err != nil {
		return err
	}

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	session.Stdin = bytes.NewReader(content)
	command := fmt.Sprintf("install -m %s /dev/stdin %s", mode, Quote(path))
	if output, err := session.CombinedOutput(command); err != nil {
		return fmt.Errorf("failed to upload %s: %w, output: %s", path, err, output)
	}

	return nil
}

// Close tears down the SSH connection if one was established.
func (r *SSHRunner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
