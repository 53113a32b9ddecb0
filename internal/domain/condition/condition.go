// Package condition maps emotional keywords in a question to topical
// guidance used to steer generated answers.
//
// Selection is first-match, not best-match: the table is evaluated in
// declaration order and the first label contained in the question wins,
// even when a later label would also match.
package condition

import "strings"

// VerseSet lists candidate verses within one chapter.
type VerseSet struct {
	Chapter int
	Verses  []int
}

// Guide is a static hint for one condition label.
// Terms are the lowercase phrases that select it; the label itself is always one of them.
type Guide struct {
	Label     string
	Terms     []string
	Chapters  []int
	KeyVerses []VerseSet
	Guidance  string
}

// Matches reports whether any of the guide's terms occurs in question, ignoring case.
func (g *Guide) Matches(question string) bool {
	q := strings.ToLower(question)
	if strings.Contains(q, strings.ToLower(g.Label)) {
		return true
	}
	for _, term := range g.Terms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}

// GenericGuidance is the instruction used when no condition matches.
const GenericGuidance = "Provide a philosophical response with personal touch based on the Bhagavad Gita"

// table is evaluated top to bottom. Order is part of the contract.
var table = []Guide{
	{
		Label:    "ANGER",
		Terms:    []string{"anger", "angry"},
		Chapters: []int{2, 16},
		KeyVerses: []VerseSet{
			{Chapter: 2, Verses: []int{56, 62, 63}},
			{Chapter: 16, Verses: []int{2, 3, 21}},
		},
		Guidance: "Focus on verses that discuss controlling anger, emotional regulation, " +
			"and the destructive nature of uncontrolled rage.",
	},
	{
		Label:    "FEELING SINFUL",
		Terms:    []string{"feeling sinful", "sinful"},
		Chapters: []int{4, 5, 10, 14, 18},
		KeyVerses: []VerseSet{
			{Chapter: 4, Verses: []int{36, 33}},
			{Chapter: 5, Verses: []int{30}},
			{Chapter: 10, Verses: []int{37}},
			{Chapter: 14, Verses: []int{6}},
			{Chapter: 18, Verses: []int{66}},
		},
		Guidance: "Select verses that emphasize divine forgiveness, spiritual purification, " +
			"and transcending past mistakes.",
	},
	{
		Label:    "PRACTISING FORGIVENESS",
		Terms:    []string{"practising forgiveness", "practicing forgiveness", "forgive"},
		Chapters: []int{11, 12, 13, 16},
		KeyVerses: []VerseSet{
			{Chapter: 11, Verses: []int{44}},
			{Chapter: 12, Verses: []int{14}},
			{Chapter: 13, Verses: []int{16}},
			{Chapter: 16, Verses: []int{2, 3}},
		},
		Guidance: "Choose verses that highlight compassion, humility, and the spiritual strength of forgiveness.",
	},
	{
		Label:    "DEPRESSION",
		Terms:    []string{"depression", "depressed"},
		Chapters: []int{2, 5},
		KeyVerses: []VerseSet{
			{Chapter: 2, Verses: []int{3, 14}},
			{Chapter: 5, Verses: []int{21}},
		},
		Guidance: "Select verses that offer hope, resilience, and spiritual perspective during emotional low points.",
	},
	{
		Label:    "FEAR",
		Terms:    []string{"fear", "afraid"},
		Chapters: []int{2, 4, 18},
		KeyVerses: []VerseSet{
			{Chapter: 2, Verses: []int{50}},
			{Chapter: 4, Verses: []int{10}},
			{Chapter: 18, Verses: []int{30}},
		},
		Guidance: "Focus on verses that discuss overcoming fear through spiritual wisdom and inner strength.",
	},
	{
		Label:    "DEMOTIVATED",
		Terms:    []string{"demotivated", "unmotivated"},
		Chapters: []int{11, 18},
		KeyVerses: []VerseSet{
			{Chapter: 11, Verses: []int{33}},
			{Chapter: 18, Verses: []int{66, 78}},
		},
		Guidance: "Choose verses that inspire action, divine support, and finding purpose beyond temporary setbacks.",
	},
}

// Select returns the first guide, in declaration order, that matches question.
// ok is false when nothing matches; that is not an error.
func Select(question string) (g Guide, ok bool) {
	for i := range table {
		if table[i].Matches(question) {
			return table[i], true
		}
	}
	return Guide{}, false
}

// Labels returns the condition labels in evaluation order.
func Labels() []string {
	labels := make([]string, len(table))
	for i := range table {
		labels[i] = table[i].Label
	}
	return labels
}
