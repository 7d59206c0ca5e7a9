// Package compress implements the bespoke two-stage codec a table's
// position array is stored under: pair substitution followed by a
// canonical Huffman coding of the resulting symbol stream. Both stages
// are purpose-built for this format rather than delegated to a general
// compression library, matching the original Rust prototype this was
// ported from.
package compress

import (
	"container/heap"
	"fmt"

	"bitbucket.org/zurichess/heisenbase/score"
)

// baseSymbols is the number of WdlScoreRange values (7); pair
// substitution allocates new symbol IDs starting here.
const baseSymbols = 7

// Compressed is the result of compressing a sequence of WdlScoreRange
// values: a growing-alphabet symbol stream (the base 7 WDL values plus
// substituted pairs) packed by a canonical Huffman code.
type Compressed struct {
	BaseSymbols uint16
	SymPairs    [][2]uint16
	CodeLens    []uint8
	Bitstream   []byte
	BitLen      int
	OrigLen     int
}

// Compress runs pair substitution then canonical Huffman coding over
// values.
func Compress(values []score.WdlScoreRange) Compressed {
	seq := make([]uint16, len(values))
	for i, v := range values {
		seq[i] = uint16(v)
	}

	seq, symPairs := pairSubstitution(seq)

	symbolsCount := baseSymbols + len(symPairs)
	codeLens := buildHuffmanCodeLengths(seq, symbolsCount)
	codes := buildCodesFromLengths(codeLens)

	var bits []byte
	for _, sym := range seq {
		c := codes[sym]
		for i := int(c.len) - 1; i >= 0; i-- {
			bits = append(bits, byte((c.code>>uint(i))&1))
		}
	}
	bitLen := len(bits)
	bitstream := make([]byte, (bitLen+7)/8)
	for i, bit := range bits {
		if bit == 1 {
			bitstream[i/8] |= 1 << uint(7-i%8)
		}
	}

	return Compressed{
		BaseSymbols: baseSymbols,
		SymPairs:    symPairs,
		CodeLens:    codeLens,
		Bitstream:   bitstream,
		BitLen:      bitLen,
		OrigLen:     len(values),
	}
}

type decodeNode struct {
	left, right int
	hasSymbol   bool
	symbol      uint16
}

// Decompress inverts Compress, recovering the exact original sequence.
func Decompress(c Compressed) ([]score.WdlScoreRange, error) {
	codes := buildCodesFromLengths(c.CodeLens)

	nodes := []decodeNode{{left: -1, right: -1}}
	for sym, code := range codes {
		if code.len == 0 {
			continue
		}
		idx := 0
		for i := int(code.len) - 1; i >= 0; i-- {
			bit := (code.code >> uint(i)) & 1
			var next int
			if bit == 0 {
				next = nodes[idx].left
			} else {
				next = nodes[idx].right
			}
			if next == -1 {
				nodes = append(nodes, decodeNode{left: -1, right: -1})
				next = len(nodes) - 1
				if bit == 0 {
					nodes[idx].left = next
				} else {
					nodes[idx].right = next
				}
			}
			idx = next
		}
		nodes[idx].hasSymbol = true
		nodes[idx].symbol = uint16(sym)
	}

	var seq []uint16
	idx := 0
	for bitIndex := 0; bitIndex < c.BitLen; bitIndex++ {
		b := c.Bitstream[bitIndex/8]
		bit := (b >> uint(7-bitIndex%8)) & 1
		var next int
		if bit == 0 {
			next = nodes[idx].left
		} else {
			next = nodes[idx].right
		}
		if next == -1 {
			return nil, fmt.Errorf("compress: bitstream does not decode to a valid path at bit %d", bitIndex)
		}
		idx = next
		if nodes[idx].hasSymbol {
			seq = append(seq, nodes[idx].symbol)
			idx = 0
			if len(seq) >= c.OrigLen {
				break
			}
		}
	}

	var output []uint16
	for _, sym := range seq {
		output = expandSymbol(sym, c.SymPairs, c.BaseSymbols, output)
	}
	if len(output) != c.OrigLen {
		return nil, fmt.Errorf("compress: decoded %d symbols, want %d", len(output), c.OrigLen)
	}

	out := make([]score.WdlScoreRange, len(output))
	for i, v := range output {
		out[i] = score.WdlScoreRange(v)
	}
	return out, nil
}

func expandSymbol(sym uint16, symPairs [][2]uint16, base uint16, out []uint16) []uint16 {
	if sym < base {
		return append(out, sym)
	}
	pair := symPairs[sym-base]
	out = expandSymbol(pair[0], symPairs, base, out)
	out = expandSymbol(pair[1], symPairs, base, out)
	return out
}

// pairSubstitution repeatedly replaces the single most frequent adjacent
// pair with a fresh symbol until no pair repeats, returning the shortened
// sequence and the table of substitutions performed.
func pairSubstitution(seq []uint16) ([]uint16, [][2]uint16) {
	var symPairs [][2]uint16
	nextSym := uint16(baseSymbols)

	for {
		type pairKey [2]uint16
		freq := map[pairKey]int{}
		for i := 0; i+1 < len(seq); i++ {
			freq[pairKey{seq[i], seq[i+1]}]++
		}

		var best pairKey
		bestCount := 0
		for p, count := range freq {
			if count > bestCount || (count == bestCount && lessPair(p, best)) {
				best, bestCount = p, count
			}
		}
		if bestCount <= 1 {
			break
		}

		newSym := nextSym
		nextSym++
		symPairs = append(symPairs, [2]uint16{best[0], best[1]})

		newSeq := make([]uint16, 0, len(seq))
		for i := 0; i < len(seq); {
			if i+1 < len(seq) && seq[i] == best[0] && seq[i+1] == best[1] {
				newSeq = append(newSeq, newSym)
				i += 2
			} else {
				newSeq = append(newSeq, seq[i])
				i++
			}
		}
		seq = newSeq
	}

	return seq, symPairs
}

func lessPair(a, b [2]uint16) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

type huffNode struct {
	left, right int
	hasSymbol   bool
	symbol      int
}

// freqItem is a (frequency, node index) pair ordered by frequency then
// index, so two nodes of equal frequency break ties deterministically by
// the order they were created in.
type freqItem struct {
	freq int
	node int
}

type freqHeap []freqItem

func (h freqHeap) Len() int { return len(h) }
func (h freqHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].node < h[j].node
}
func (h freqHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *freqHeap) Push(x any)        { *h = append(*h, x.(freqItem)) }
func (h *freqHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func buildHuffmanCodeLengths(seq []uint16, symbolsCount int) []uint8 {
	freqs := make([]int, symbolsCount)
	for _, s := range seq {
		freqs[s]++
	}

	var nodes []huffNode
	h := &freqHeap{}
	for sym, freq := range freqs {
		if freq > 0 {
			nodes = append(nodes, huffNode{left: -1, right: -1, hasSymbol: true, symbol: sym})
			heap.Push(h, freqItem{freq: freq, node: len(nodes) - 1})
		}
	}

	lengths := make([]uint8, symbolsCount)
	if h.Len() == 0 {
		return lengths
	}

	for h.Len() > 1 {
		a := heap.Pop(h).(freqItem)
		b := heap.Pop(h).(freqItem)
		nodes = append(nodes, huffNode{left: a.node, right: b.node})
		heap.Push(h, freqItem{freq: a.freq + b.freq, node: len(nodes) - 1})
	}
	root := heap.Pop(h).(freqItem).node
	assignLengths(nodes, root, 0, lengths)
	return lengths
}

func assignLengths(nodes []huffNode, idx int, depth uint8, lengths []uint8) {
	n := nodes[idx]
	if n.hasSymbol {
		if depth == 0 {
			lengths[n.symbol] = 1
		} else {
			lengths[n.symbol] = depth
		}
		return
	}
	assignLengths(nodes, n.left, depth+1, lengths)
	assignLengths(nodes, n.right, depth+1, lengths)
}

type huffCode struct {
	code uint32
	len  uint8
}

// buildCodesFromLengths assigns canonical Huffman codes: symbols sorted
// by (length, symbol id), shorter codes preceding longer ones, codes of
// equal length consecutive.
func buildCodesFromLengths(codeLens []uint8) []huffCode {
	type entry struct {
		sym int
		len uint8
	}
	var entries []entry
	for sym, l := range codeLens {
		if l > 0 {
			entries = append(entries, entry{sym, l})
		}
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && (entries[j].len < entries[j-1].len ||
			(entries[j].len == entries[j-1].len && entries[j].sym < entries[j-1].sym)); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	codes := make([]huffCode, len(codeLens))
	var code uint32
	var prevLen uint8
	for _, e := range entries {
		code <<= uint(e.len - prevLen)
		codes[e.sym] = huffCode{code: code, len: e.len}
		code++
		prevLen = e.len
	}
	return codes
}
