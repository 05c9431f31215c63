package fragment

import (
	"github.com/hep-eformat/eformat/checksum"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
)

// Node is one link of a write builder's gather list: a caller-owned word
// slice plus the next node in emission order. The ROD and ROB builders
// link a caller's data and status slices into the chain without copying
// them; FullEventBuilder.Bind re-encodes its ROB children's words into a
// payload slice of its own (compressed or not).
type Node struct {
	Words []uint32
	Next  *Node
}

// appendNode walks to the tail of head and links n after it. head may be
// nil, in which case n becomes the new head.
func appendNode(head, n *Node) *Node {
	if head == nil {
		return n
	}
	tail := head
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = n
	return head
}

// Count returns the number of nodes in the chain starting at head.
func Count(head *Node) int {
	n := 0
	for node := head; node != nil; node = node.Next {
		n++
	}
	return n
}

// CountWords returns the total word count across the chain starting at
// head.
func CountWords(head *Node) uint32 {
	var total uint32
	for node := head; node != nil; node = node.Next {
		total += uint32(len(node.Words))
	}
	return total
}

// Copy concatenates the chain into dest, a caller-owned byte buffer, and
// returns the number of bytes written. It returns 0 without writing
// anything if dest is too small.
func Copy(head *Node, dest []byte) int {
	need := int(CountWords(head)) * 4
	if len(dest) < need {
		return 0
	}

	pos := 0
	for node := head; node != nil; node = node.Next {
		for _, w := range node.Words {
			wireOrder.PutUint32(dest[pos:], w)
			pos += 4
		}
	}

	return pos
}

// ShallowCopy emits a gather vector with one byte slice per non-empty
// node, in chain order. Each slice is newly allocated and holds that
// node's words encoded in wire order.
func ShallowCopy(head *Node) [][]byte {
	var iov [][]byte
	for node := head; node != nil; node = node.Next {
		if len(node.Words) == 0 {
			continue
		}
		buf := make([]byte, len(node.Words)*4)
		for i, w := range node.Words {
			wireOrder.PutUint32(buf[i*4:], w)
		}
		iov = append(iov, buf)
	}
	return iov
}

// Checksum runs the selected algorithm over the chain in emission order.
// CRC16CCITT results are widened to uint32 so callers have a single
// return type regardless of algorithm.
func Checksum(kind format.CheckSum, head *Node) (uint32, error) {
	switch kind {
	case format.NoChecksum:
		return 0, nil
	case format.Adler32:
		var sum uint32 = 1
		for node := head; node != nil; node = node.Next {
			sum = checksum.Adler32Init(sum, node.Words)
		}
		return sum, nil
	case format.CRC16CCITT:
		var crc uint16 = 0xffff
		for node := head; node != nil; node = node.Next {
			crc = checksum.CRC16CCITTInit(crc, node.Words)
		}
		return uint32(crc), nil
	default:
		return 0, errs.ErrUnsupportedOperation
	}
}
