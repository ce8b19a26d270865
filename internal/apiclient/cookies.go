// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// swapJar is a cookie jar that can be reset while the client is in use.
type swapJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSwapJar() *swapJar {
	return &swapJar{jar: newJar()}
}

func newJar() *cookiejar.Jar {
	// cookiejar.New never returns an error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

func (s *swapJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jar.SetCookies(u, cookies)
}

func (s *swapJar) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jar.Cookies(u)
}

func (s *swapJar) reset() {
	s.mu.Lock()
	s.jar = newJar()
	s.mu.Unlock()
}

// ExportCookies serializes the backend cookies as newline separated
// name=value pairs, suitable for storing in the console session.
func (c *Client) ExportCookies() string {
	cookies := c.jar.Cookies(c.base)
	lines := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		lines = append(lines, ck.Name+"="+ck.Value)
	}
	return strings.Join(lines, "\n")
}

// ImportCookies restores cookies produced by ExportCookies.
func (c *Client) ImportCookies(data string) {
	var cookies []*http.Cookie
	for _, line := range strings.Split(data, "\n") {
		name, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok || name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	if len(cookies) == 0 {
		return
	}
	root := *c.base
	root.Path = "/"
	c.jar.SetCookies(&root, cookies)
}

// ClearCookies forgets every backend cookie.
func (c *Client) ClearCookies() {
	c.jar.reset()
}
