package db

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/loop"
	"github.com/elliotchance/sshtunnel"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

// Tunnel forwards database connections through an SSH server.
type Tunnel struct {
	// "user@host[:port]" of the SSH server.
	Server string

	Auth ssh.AuthMethod

	// how long to wait for the local end to accept connections. Default is 10s.
	ReadyTimeout time.Duration
}

// PasswordAuth authenticates SSH with password.
func PasswordAuth(password string) ssh.AuthMethod {
	return ssh.Password(password)
}

// KeyFileAuth authenticates SSH with a private key file.
func KeyFileAuth(path string) ssh.AuthMethod {
	return sshtunnel.PrivateKeyFile(path)
}

// AgentAuth authenticates SSH with ssh-agent.
func AgentAuth() ssh.AuthMethod {
	return sshtunnel.SSHAgent()
}

type openTunnel struct {
	tunnel *sshtunnel.SSHTunnel
	port   int
}

func (ot *openTunnel) Close() {
	ot.tunnel.Close()
}

// start opens tunnel toward remote, and waits until its local end is ready.
func (t Tunnel) start(ctx context.Context, remote string) (*openTunnel, error) {
	port, err := freePort()
	if err != nil {
		return nil, derr.Wrap(derr.ErrDatabase, err, "cannot find a local port for ssh tunnel")
	}
	logger := log.Named(log.DB).With(zap.String("ssh", t.Server), zap.String("remote", remote))

	tunnel := sshtunnel.NewSSHTunnel(t.Server, t.Auth, remote, strconv.Itoa(port))
	tunnel.Log = zap.NewStdLog(logger)

	errs := make(chan error, 1)
	go func() {
		errs <- tunnel.Start()
	}()

	timeout := t.ReadyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	local := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	_, err = loop.Start(ctx, struct{}{}, func(ctx context.Context, v struct{}) (struct{}, loop.Next) {
		select {
		case err := <-errs:
			if err == nil {
				err = fmt.Errorf("ssh tunnel is closed")
			}
			return v, loop.Break(err)
		default:
		}
		conn, err := net.DialTimeout("tcp", local, time.Second)
		if err != nil {
			return v, loop.Continue(50 * time.Millisecond)
		}
		conn.Close()
		return v, loop.Break(nil)
	})
	if err != nil {
		tunnel.Close()
		return nil, derr.Wrap(derr.ErrDatabase, err, "ssh tunnel via %s is not ready", t.Server)
	}
	logger.Info("ssh tunnel ready", zap.Int("port", port))
	return &openTunnel{tunnel: tunnel, port: port}, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
