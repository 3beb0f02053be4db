// Package diff computes human readable differences between text versions
// Package diff 计算文本版本之间的可读差异
package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Operation kind of a diff segment
// Operation 差异片段类型
type Operation string

const (
	OpEqual  Operation = "equal"
	OpInsert Operation = "insert"
	OpDelete Operation = "delete"
)

// Segment one run of text with its operation
// Segment 一段文本及其操作类型
type Segment struct {
	Op   Operation `json:"op"`
	Text string    `json:"text"`
}

// Summary counts of changed characters
// Summary 变更字符统计
type Summary struct {
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}

// Compute returns the semantic diff turning from into to
// Compute 返回从 from 到 to 的语义化差异
func Compute(from, to string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		segments = append(segments, Segment{Op: toOperation(d.Type), Text: d.Text})
	}
	return segments
}

// Summarize counts inserted and deleted runes
// Summarize 统计插入与删除的字符数
func Summarize(segments []Segment) Summary {
	var s Summary
	for _, seg := range segments {
		switch seg.Op {
		case OpInsert:
			s.Inserted += len([]rune(seg.Text))
		case OpDelete:
			s.Deleted += len([]rune(seg.Text))
		}
	}
	return s
}

// Apply rebuilds both sides from segments, returning (from, to)
// Apply 从差异片段还原两侧文本，返回 (from, to)
func Apply(segments []Segment) (string, string) {
	var from, to []rune
	for _, seg := range segments {
		switch seg.Op {
		case OpEqual:
			from = append(from, []rune(seg.Text)...)
			to = append(to, []rune(seg.Text)...)
		case OpDelete:
			from = append(from, []rune(seg.Text)...)
		case OpInsert:
			to = append(to, []rune(seg.Text)...)
		}
	}
	return string(from), string(to)
}

func toOperation(t diffmatchpatch.Operation) Operation {
	switch t {
	case diffmatchpatch.DiffInsert:
		return OpInsert
	case diffmatchpatch.DiffDelete:
		return OpDelete
	default:
		return OpEqual
	}
}
