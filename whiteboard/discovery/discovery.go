// Package discovery finds whiteboard servers on the local network over
// mDNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// DefaultService is the mDNS service type whiteboard servers announce.
const DefaultService = "_whiteboard._tcp"

// DefaultTimeout bounds a Browse call when no timeout is given.
const DefaultTimeout = 2 * time.Second

// Endpoint is one announced server.
type Endpoint struct {
	Name string
	Host string
	Addr net.IP
	Port int
	Info []string
}

// HostPort returns the dialable "addr:port" of the endpoint.
func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Addr.String(), strconv.Itoa(e.Port))
}

// WebSocketURL builds a ws:// URL for path on the endpoint. A TXT record
// of the form "path=/ws" overrides an empty path.
func (e Endpoint) WebSocketURL(path string) string {
	if path == "" {
		path = e.txt("path")
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "ws", Host: e.HostPort(), Path: path}
	return u.String()
}

func (e Endpoint) txt(key string) string {
	for _, f := range e.Info {
		if k, v, ok := strings.Cut(f, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// Browse queries the local network for service and returns every
// endpoint that answered within timeout. An empty service means
// DefaultService. Answers without an IPv4 address or port are skipped.
func Browse(ctx context.Context, service string, timeout time.Duration) ([]Endpoint, error) {
	if service == "" {
		service = DefaultService
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(params)
		close(entries)
	}()

	var (
		found []Endpoint
		seen  = map[string]bool{}
	)
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				if err := <-errCh; err != nil {
					return found, fmt.Errorf("mdns query %s: %w", service, err)
				}
				return found, nil
			}
			ep, ok := fromEntry(e)
			if !ok || seen[ep.HostPort()] {
				continue
			}
			seen[ep.HostPort()] = true
			found = append(found, ep)
		case <-ctx.Done():
			go func() {
				for range entries {
				}
			}()
			return found, ctx.Err()
		}
	}
}

func fromEntry(e *mdns.ServiceEntry) (Endpoint, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Endpoint{}, false
	}
	info := e.InfoFields
	if len(info) == 0 && e.Info != "" {
		info = strings.Split(e.Info, "|")
	}
	return Endpoint{
		Name: e.Name,
		Host: strings.TrimSuffix(e.Host, "."),
		Addr: e.AddrV4,
		Port: e.Port,
		Info: info,
	}, true
}
