package main

import (
	"net"
	"strconv"

	"github.com/mickamy/go-bolt/bolt"
)

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func portOf(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return bolt.DefaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return bolt.DefaultPort
	}
	return port
}
