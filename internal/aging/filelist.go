// Copyright 2024 The Geriatrix Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aging

import "container/list"

// fileList is the global registry of every live file, kept as a plain
// doubly-linked list. The original tool hand-rolled an intrusive ring
// with a sentinel node for O(1) insert/remove; container/list gives
// the same complexity without the sentinel bookkeeping, so there is
// nothing to gain by reimplementing it by hand here.
type fileList struct {
	l *list.List
	byPath map[string]*list.Element
}

func newFileList() *fileList {
	return &fileList{l: list.New(), byPath: make(map[string]*list.Element)}
}

func (fl *fileList) Add(f *File) {
	e := fl.l.PushBack(f)
	f.listElem = e
	fl.byPath[f.Path] = e
}

func (fl *fileList) Remove(f *File) {
	if e, ok := f.listElem.(*list.Element); ok {
		fl.l.Remove(e)
	}
	delete(fl.byPath, f.Path)
	f.listElem = nil
}

func (fl *fileList) Len() int { return fl.l.Len() }

func (fl *fileList) Get(path string) (*File, bool) {
	e, ok := fl.byPath[path]
	if !ok {
		return nil, false
	}
	return e.Value.(*File), true
}

// All returns a snapshot slice of every live file, safe to range over
// while the caller mutates the list.
func (fl *fileList) All() []*File {
	out := make([]*File, 0, fl.l.Len())
	for e := fl.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*File))
	}
	return out
}
