package importer_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
)

func TestParse(t *testing.T) {
	type args struct {
		csv string
	}

	type testCase struct {
		name    string
		args    args
		verify  func(t *testing.T, res *importer.Result)
		wantErr error
	}

	tests := []testCase{
		{
			name: "TypedSemicolon",
			args: args{csv: "type;amount;category;description\nincome;2100.00;salary;March\nexpense;12,50;food;Lunch\n"},
			verify: func(t *testing.T, res *importer.Result) {
				assert.Equal(t, "typed", res.Profile)
				assert.Equal(t, ';', res.Delimiter)
				require.Len(t, res.Rows, 2)

				assert.Equal(t, 2, res.Rows[0].Line)
				assert.Equal(t, transaction.TypeIncome, res.Rows[0].Params.Type)
				assert.True(t, res.Rows[0].Params.Amount.Equal(decimal.RequireFromString("2100")))
				assert.Equal(t, "salary", res.Rows[0].Params.Category)
				assert.Equal(t, "March", res.Rows[0].Params.Description)

				assert.Equal(t, transaction.TypeExpense, res.Rows[1].Params.Type)
				assert.True(t, res.Rows[1].Params.Amount.Equal(decimal.RequireFromString("12.5")))
			},
		},
		{
			name: "SignedComma",
			args: args{csv: "Amount,Category,Description\n-1234.56,rent,April\n300,gift,\n"},
			verify: func(t *testing.T, res *importer.Result) {
				assert.Equal(t, "signed", res.Profile)
				assert.Equal(t, ',', res.Delimiter)
				require.Len(t, res.Rows, 2)

				assert.Equal(t, transaction.TypeExpense, res.Rows[0].Params.Type)
				assert.True(t, res.Rows[0].Params.Amount.Equal(decimal.RequireFromString("1234.56")))
				assert.Equal(t, transaction.TypeIncome, res.Rows[1].Params.Type)
				assert.Empty(t, res.Rows[1].Params.Description)
			},
		},
		{
			name: "PreambleAndReorderedColumns",
			args: args{csv: "Statement;March\n\nопис;сума;категорія\nКава;-45,00;кафе\n"},
			verify: func(t *testing.T, res *importer.Result) {
				assert.Equal(t, "signed", res.Profile)
				require.Len(t, res.Rows, 1)

				assert.Equal(t, 4, res.Rows[0].Line)
				assert.Equal(t, "Кава", res.Rows[0].Params.Description)
				assert.Equal(t, "кафе", res.Rows[0].Params.Category)
				assert.True(t, res.Rows[0].Params.Amount.Equal(decimal.NewFromInt(45)))
			},
		},
		{
			name: "BadRowsAreReportedNotFatal",
			args: args{csv: "type;amount;category\nexpense;abc;food\n;;\nincome;;salary\nexpense;1.234,56;rent\n"},
			verify: func(t *testing.T, res *importer.Result) {
				require.Len(t, res.Rows, 1)
				assert.True(t, res.Rows[0].Params.Amount.Equal(decimal.RequireFromString("1234.56")))

				require.Len(t, res.Errors, 2)
				assert.Equal(t, 2, res.Errors[0].Line)
				assert.Equal(t, 4, res.Errors[1].Line)
			},
		},
		{
			name: "HeaderOnly",
			args: args{csv: "type;amount;category;description"},
			verify: func(t *testing.T, res *importer.Result) {
				assert.Empty(t, res.Rows)
				assert.Empty(t, res.Errors)
			},
		},
		{
			name:    "Empty",
			args:    args{csv: ""},
			wantErr: importer.ErrNoProfile,
		},
		{
			name:    "UnknownLayout",
			args:    args{csv: "date;memo\n2024-01-01;x\n"},
			wantErr: importer.ErrNoProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := importer.Parse(strings.NewReader(tt.args.csv))

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)
			tt.verify(t, res)
		})
	}
}

func TestParse_Latin1(t *testing.T) {
	utf8CSV := "amount;category;description\n-10,00;café;CAFÉ CENTRAL\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	res, err := importer.Parse(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	assert.NotEqual(t, "UTF-8", res.Charset)
	assert.True(t, utf8.ValidString(res.Rows[0].Params.Description))
	assert.True(t, strings.HasSuffix(res.Rows[0].Params.Description, "CENTRAL"))
	assert.True(t, res.Rows[0].Params.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, transaction.TypeExpense, res.Rows[0].Params.Type)
}
