package valueobjects

// ValueCount is one observed value and how often it was seen.
type ValueCount struct {
	Value string `json:"value" dynamodbav:"value"`
	Count int64  `json:"count" dynamodbav:"count"`
}

// ValueEnum is a bounded frequency list. Adding a value that is already
// present sums its count; a new value is kept only while the list has
// fewer than limit distinct values. Order is first-seen order.
type ValueEnum struct {
	limit int
	items []ValueCount
	index map[string]int
}

func NewValueEnum(limit int, items ...ValueCount) *ValueEnum {
	e := &ValueEnum{
		limit: limit,
		index: make(map[string]int, len(items)),
	}
	e.Merge(items)
	return e
}

// Add records count occurrences of value. It reports whether the value
// was counted.
func (e *ValueEnum) Add(value string, count int64) bool {
	if i, ok := e.index[value]; ok {
		e.items[i].Count += count
		return true
	}
	if e.limit > 0 && len(e.items) >= e.limit {
		return false
	}
	e.index[value] = len(e.items)
	e.items = append(e.items, ValueCount{Value: value, Count: count})
	return true
}

// Set records value with exactly count, replacing any stored count. A new
// value obeys the same limit as Add.
func (e *ValueEnum) Set(value string, count int64) bool {
	if i, ok := e.index[value]; ok {
		e.items[i].Count = count
		return true
	}
	return e.Add(value, count)
}

// Merge adds every entry of items in order.
func (e *ValueEnum) Merge(items []ValueCount) {
	for _, vc := range items {
		e.Add(vc.Value, vc.Count)
	}
}

func (e *ValueEnum) Len() int {
	if e == nil {
		return 0
	}
	return len(e.items)
}

// List returns a copy of the entries in first-seen order.
func (e *ValueEnum) List() []ValueCount {
	if e == nil || len(e.items) == 0 {
		return nil
	}
	out := make([]ValueCount, len(e.items))
	copy(out, e.items)
	return out
}

func (e *ValueEnum) Clone() *ValueEnum {
	if e == nil {
		return nil
	}
	return NewValueEnum(e.limit, e.items...)
}
