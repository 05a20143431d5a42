// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

package report

import (
	"math/rand/v2"
	"strings"
	"sync"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"
)

// TextGenerator produces the free-text column of a report row.
type TextGenerator interface {
	Sentence() string
}

// FakerText builds short placeholder sentences from gofakeit words.
type FakerText struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewFakerText seeds the generator. Seed 0 picks a random seed.
func NewFakerText(seed uint64) *FakerText {
	return &FakerText{faker: gofakeit.New(seed)}
}

// Sentence returns 6 to 12 capitalised words ending in a period.
func (f *FakerText) Sentence() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.faker.IntRange(6, 12)
	words := make([]string, n)
	for i := range words {
		words[i] = f.faker.Word()
	}
	s := strings.Join(words, " ")
	r := []rune(s)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r) + "."
}

// lockedRand is a rand.Rand safe for concurrent report requests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
