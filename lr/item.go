package lr

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/npillmayer/parlr/lr/bitset"
)

// Item is an LR(1) item: a rule with a dot marking progress, tagged with the
// set of lookahead terminals under which the completed rule may be reduced.
type Item struct {
	rule *Rule
	dot  int
	la   *bitset.Set
}

// StartItem returns the initial item of the table construction: the start
// rule with the dot at position 0 and end-of-input as the only lookahead.
func StartItem(g *Grammar) Item {
	la := bitset.New(len(g.symseq))
	la.Add(g.eof.Value)
	return Item{rule: g.rules[0], dot: 0, la: la}
}

// Rule returns the item's underlying grammar rule.
func (i Item) Rule() *Rule {
	return i.rule
}

// PeekSymbol returns the symbol right after the dot, or nil if the item is
// complete.
func (i Item) PeekSymbol() *Symbol {
	if i.dot >= len(i.rule.rhs) {
		return nil
	}
	return i.rule.rhs[i.dot]
}

// Suffix returns the symbols after the dotted symbol (the β in A → α·Bβ).
func (i Item) Suffix() []*Symbol {
	if i.dot+1 > len(i.rule.rhs) {
		return nil
	}
	return i.rule.rhs[i.dot+1:]
}

// Advance moves the dot over the next symbol. The lookahead set is copied;
// items of different states never share lookahead storage.
func (i Item) Advance() Item {
	if i.dot >= len(i.rule.rhs) {
		panic("cannot advance dot of a completed item")
	}
	return Item{rule: i.rule, dot: i.dot + 1, la: i.la.Copy()}
}

func (i Item) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s ::=", i.rule.LHS.Name)
	for k, sym := range i.rule.rhs {
		if k == i.dot {
			b.WriteString(" ∘")
		}
		b.WriteString(" " + sym.Name)
	}
	if i.dot == len(i.rule.rhs) {
		b.WriteString(" ∘")
	}
	b.WriteString(", " + i.la.String() + "]")
	return b.String()
}

// --- Item sets --------------------------------------------------------------

// itemCore identifies an item up to its lookahead set.
type itemCore struct {
	rule *Rule
	dot  int
}

// itemSet is a set of LR(1) items. Items with equal core are merged, their
// lookahead sets unioned. Equality of two item sets is structural, over rule
// serials, dot positions and lookahead membership.
type itemSet struct {
	items map[itemCore]*bitset.Set
}

func newItemSet() *itemSet {
	return &itemSet{items: make(map[itemCore]*bitset.Set)}
}

// add merges an item into the set. The lookahead set is copied on first
// contact, so callers retain ownership of la. Reports whether the set
// changed, i.e. the item was new or brought new lookaheads.
func (S *itemSet) add(r *Rule, dot int, la *bitset.Set) bool {
	core := itemCore{rule: r, dot: dot}
	if have, ok := S.items[core]; ok {
		return have.Union(la)
	}
	S.items[core] = la.Copy()
	return true
}

func (S *itemSet) size() int {
	return len(S.items)
}

func (S *itemSet) empty() bool {
	return len(S.items) == 0
}

// ordered returns the set's items sorted by (rule serial, dot). All
// iteration over item sets goes through this, keeping table construction
// deterministic.
func (S *itemSet) ordered() []Item {
	items := make([]Item, 0, len(S.items))
	for core, la := range S.items {
		items = append(items, Item{rule: core.rule, dot: core.dot, la: la})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].rule.Serial != items[b].rule.Serial {
			return items[a].rule.Serial < items[b].rule.Serial
		}
		return items[a].dot < items[b].dot
	})
	return items
}

// itemSnapshot is the canonical form of one item, input to the structural
// fingerprint.
type itemSnapshot struct {
	Rule int
	Dot  int
	La   []int
}

// fingerprint returns a hash over the canonicalized content of the item
// set. Two sets have equal fingerprints iff they hold the same items with
// the same lookaheads; object identity plays no role.
func (S *itemSet) fingerprint() string {
	snap := make([]itemSnapshot, 0, len(S.items))
	for _, item := range S.ordered() {
		snap = append(snap, itemSnapshot{
			Rule: item.rule.Serial,
			Dot:  item.dot,
			La:   item.la.Values(),
		})
	}
	return string(structhash.Sha1(snap, 1))
}

// Dump is a debugging helper, listing the items of a set.
func Dump(S *itemSet) {
	for k, item := range S.ordered() {
		tracer().Debugf("%3d: %s", k, item)
	}
}

func itemSetString(S *itemSet) string {
	var b bytes.Buffer
	b.WriteString("{")
	for k, item := range S.ordered() {
		if k > 0 {
			b.WriteString(", ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(item.String())
	}
	b.WriteString(" }")
	return b.String()
}
