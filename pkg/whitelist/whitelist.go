package whitelist

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
)

// Service answers whether a sender is authorized to supply reports. Entries
// are loaded once from a JSON file and cached for the process lifetime;
// external edits require an explicit Reload. An unreadable file yields an
// empty whitelist, so nothing is trusted.
type Service struct {
	path string

	mu      sync.RWMutex
	vendors map[string]struct{}
	domains map[string]struct{}
}

type whitelistFile struct {
	Vendors []string `json:"vendors"`
	Domains []string `json:"domains"`
}

func New(path string) *Service {
	s := &Service{
		path:    path,
		vendors: map[string]struct{}{},
		domains: map[string]struct{}{},
	}
	if err := s.Reload(); err != nil {
		log.Printf("[Whitelist] Failed to load %s (treating as empty): %v", path, err)
	}
	return s
}

// Reload re-reads the whitelist file, replacing the cached entries. On
// failure the cache is cleared rather than left stale.
func (s *Service) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vendors = map[string]struct{}{}
	s.domains = map[string]struct{}{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var wf whitelistFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return err
	}

	for _, v := range wf.Vendors {
		s.vendors[normalize(v)] = struct{}{}
	}
	for _, d := range wf.Domains {
		s.domains[normalize(d)] = struct{}{}
	}
	return nil
}

// IsTrusted reports whether the normalized sender address exactly equals a
// listed vendor, or its domain part exactly equals a listed domain. No
// substring matching.
func (s *Service) IsTrusted(sender string) bool {
	addr := normalize(sender)
	if addr == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.vendors[addr]; ok {
		return true
	}
	if at := strings.LastIndex(addr, "@"); at != -1 {
		if _, ok := s.domains[addr[at+1:]]; ok {
			return true
		}
	}
	return false
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
