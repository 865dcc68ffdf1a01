package importer

import "strings"

// amountMode determines how the transaction type is derived from a row.
type amountMode int

const (
	// amountTyped means an explicit type column next to a non-negative amount.
	amountTyped amountMode = iota
	// amountSigned means a single signed amount: negative is an expense.
	amountSigned
)

// column lists the header spellings accepted for one field, lower case.
type column []string

var (
	colType        = column{"type", "тип", "tipo"}
	colAmount      = column{"amount", "сума", "montante", "valor"}
	colCategory    = column{"category", "категорія", "categoria"}
	colDescription = column{"description", "опис", "descrição", "descricao"}
)

// Profile describes a supported CSV column layout.
type Profile struct {
	Name       string
	AmountMode amountMode
	Columns    []column // required columns; description is always optional
}

// profiles is the ordered list tried during detection. The typed layout comes
// first because a typed header also satisfies the signed one.
var profiles = []Profile{
	{
		Name:       "typed",
		AmountMode: amountTyped,
		Columns:    []column{colType, colAmount, colCategory},
	},
	{
		Name:       "signed",
		AmountMode: amountSigned,
		Columns:    []column{colAmount, colCategory},
	},
}

// colIndex maps a lower-cased header cell to its position.
type colIndex map[string]int

func newColIndex(row []string) colIndex {
	cols := make(colIndex, len(row))

	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if _, dup := cols[name]; name != "" && !dup {
			cols[name] = i
		}
	}

	return cols
}

// find returns the index of the first accepted spelling of c, or -1.
func (ci colIndex) find(c column) int {
	for _, name := range c {
		if i, ok := ci[name]; ok {
			return i
		}
	}

	return -1
}

func (p *Profile) matches(cols colIndex) bool {
	for _, c := range p.Columns {
		if cols.find(c) < 0 {
			return false
		}
	}

	return true
}
