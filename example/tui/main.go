// Command tui is a small demo driving go-bolt against a live Neo4j server:
// it connects, runs one Cypher query, and streams the decoded records into
// a scrolling terminal list as they arrive.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/go-bolt/bolt"
)

func main() {
	addr := flag.String("addr", "localhost:7687", "Bolt server address")
	user := flag.String("user", "neo4j", "username")
	password := flag.String("password", "", "password")
	query := flag.String("query", "MATCH (n) RETURN n LIMIT 25", "Cypher query to run")
	flag.Parse()

	cfg := &bolt.Config{
		Hostname:  hostOnly(*addr),
		Port:      portOf(*addr),
		Auth:      bolt.Auth{Scheme: "basic", Principal: *user, Credentials: *password},
		UserAgent: "go-bolt-tui/0",
	}

	m := newModel(cfg, *query)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tui:", err)
		os.Exit(1)
	}
}
