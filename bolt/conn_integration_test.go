//go:build integration

package bolt_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mickamy/go-bolt/bolt"
	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/packstream"
)

// startNeo4j launches a disposable Neo4j server and returns its Bolt
// host and mapped port: start the container, wait for readiness, and
// register Cleanup to terminate it.
func startNeo4j(t *testing.T) (string, int) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5-community",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/test-password",
		},
		WaitingFor: wait.ForLog("Bolt enabled").WithStartupTimeout(90 * time.Second),
	}
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	mapped, err := ctr.MappedPort(ctx, "7687/tcp")
	require.NoError(t, err)

	addr := net.JoinHostPort(host, mapped.Port())
	splitHost, splitPort, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(splitPort)
	require.NoError(t, err)
	return splitHost, port
}

func TestConnRunAgainstLiveServer(t *testing.T) {
	host, port := startNeo4j(t)

	cfg := &bolt.Config{
		Hostname:  host,
		Port:      port,
		Auth:      bolt.Auth{Scheme: "basic", Principal: "neo4j", Credentials: "test-password"},
		UserAgent: "go-bolt-integration-test/0",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := bolt.Dial(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close(ctx)

	result, err := conn.Run(ctx, "RETURN 1 AS n, 'hi' AS s", nil, message.RunExtra{})
	require.NoError(t, err)
	require.Equal(t, []string{"n", "s"}, result.Fields())

	rec, ok, err := result.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, packstream.Int(1), rec[0])
	require.Equal(t, packstream.String("hi"), rec[1])

	_, ok, err = result.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConnTransactionRollbackHidesWrites(t *testing.T) {
	host, port := startNeo4j(t)

	cfg := &bolt.Config{Hostname: host, Port: port, Auth: bolt.Auth{Scheme: "basic", Principal: "neo4j", Credentials: "test-password"}, UserAgent: "go-bolt-integration-test/0"}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := bolt.Dial(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close(ctx)

	require.NoError(t, conn.Begin(ctx, message.RunExtra{}))
	created, err := conn.Run(ctx, "CREATE (n:IntegrationTest {marker: 'rollback-me'})", nil, message.RunExtra{})
	require.NoError(t, err)
	// ROLLBACK is only legal from TxReady; discard the open stream first.
	require.NoError(t, created.Close(ctx))
	require.NoError(t, conn.Rollback(ctx))

	result, err := conn.Run(ctx, "MATCH (n:IntegrationTest {marker: 'rollback-me'}) RETURN n", nil, message.RunExtra{})
	require.NoError(t, err)
	_, ok, err := result.Next(ctx)
	require.NoError(t, err)
	require.False(t, ok, "rolled-back node should not be visible")
}
