// Copyright (C) 2015-2016  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.

package refs

import (
	"sync"

	"lab.nexedi.com/kirr/gogit/oid"
)

// MemoryRefsContainer is a Container backed by a plain map, with no packed
// table of its own - everything lives "loose". It exists for tests that
// want a RefsContainer without touching a filesystem (spec.md §4.E).
type MemoryRefsContainer struct {
	mu   sync.Mutex
	refs map[string]Value
}

var _ Container = (*MemoryRefsContainer)(nil)

// NewMemoryRefsContainer returns an empty container.
func NewMemoryRefsContainer() *MemoryRefsContainer {
	return &MemoryRefsContainer{refs: make(map[string]Value)}
}

func (m *MemoryRefsContainer) ReadLoose(name string) (Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.refs[name]
	return v, ok, nil
}

func (m *MemoryRefsContainer) ReadPacked() (PackedTable, error) {
	return PackedTable{}, nil
}

func (m *MemoryRefsContainer) ReadRef(name string) (Value, bool, error) {
	return m.ReadLoose(name)
}

func (m *MemoryRefsContainer) Follow(name string) (string, oid.ID, bool, error) {
	return follow(name, m.ReadRef)
}

func (m *MemoryRefsContainer) Resolve(name string) (oid.ID, error) {
	_, id, ok, err := m.Follow(name)
	if err != nil {
		return oid.ID{}, err
	}
	if !ok {
		return oid.ID{}, &NotFoundError{Name: name}
	}
	return id, nil
}

func (m *MemoryRefsContainer) Contains(name string) bool {
	_, _, ok, _ := follow(name, m.ReadRef)
	return ok
}

func (m *MemoryRefsContainer) Keys(base string) ([]string, error) {
	m.mu.Lock()
	names := make([]string, 0, len(m.refs))
	for n := range m.refs {
		names = append(names, n)
	}
	m.mu.Unlock()

	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "HEAD" && !CheckRefFormat(n) {
			continue
		}
		if matchesBase(n, base) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MemoryRefsContainer) AsDict(base string) (map[string]oid.ID, error) {
	names, err := m.Keys(base)
	if err != nil {
		return nil, err
	}
	out := make(map[string]oid.ID, len(names))
	for _, n := range names {
		id, err := m.Resolve(n)
		if err != nil {
			continue // unable to resolve - dropped, per spec.md §4.C
		}
		out[n] = id
	}
	return out, nil
}

func (m *MemoryRefsContainer) GetPeeled(name string) (oid.ID, bool, error) {
	return oid.ID{}, false, nil
}

func (m *MemoryRefsContainer) SetIfEquals(name string, expected oid.ID, expectedAny bool, newID oid.ID) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	terminal, _, _, err := m.Follow(name)
	if err != nil {
		return false, err
	}
	if terminal == "" {
		terminal = name
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !expectedAny {
		cur, ok := m.refs[terminal]
		curID := oid.ID{}
		if ok && cur.Kind == Direct {
			curID = cur.ID
		}
		if !ok || curID != expected {
			return false, nil
		}
	}
	m.refs[terminal] = NewDirect(newID)
	return true, nil
}

func (m *MemoryRefsContainer) AddIfNew(name string, id oid.ID) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.refs[name]; ok {
		return false, nil
	}
	m.refs[name] = NewDirect(id)
	return true, nil
}

func (m *MemoryRefsContainer) RemoveIfEquals(name string, expected oid.ID, expectedAny bool) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !expectedAny {
		cur, ok := m.refs[name]
		curID := oid.ID{}
		if ok && cur.Kind == Direct {
			curID = cur.ID
		}
		if !ok || curID != expected {
			return false, nil
		}
	}
	delete(m.refs, name)
	return true, nil
}

func (m *MemoryRefsContainer) SetSymbolicRef(name, target string) error {
	if err := checkName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[name] = NewSymbolic(target)
	return nil
}

func (m *MemoryRefsContainer) Set(name string, id oid.ID) error {
	_, err := m.SetIfEquals(name, oid.ID{}, true, id)
	return err
}

func (m *MemoryRefsContainer) Remove(name string) error {
	_, err := m.RemoveIfEquals(name, oid.ID{}, true)
	return err
}
