package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whyyagswhy/dealcalc-sub000/internal/approval"
)

const thresholdCSV = `product_name,qty_min,qty_max,level0,level1,level2,level3,level4
[Enterprise] Sales Cloud,1,99,0.05,0.10,0.15,0.20,0.25
"[Enterprise, Unlimited] Service Cloud",100,499,0.08,0.12,,0.22,0.30

Tableau,1,1000,0.0,,,,
`

func TestReadThresholds(t *testing.T) {
	rows, err := ReadThresholds(strings.NewReader(thresholdCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "[Enterprise] Sales Cloud", rows[0].ProductName)
	require.Equal(t, 1, rows[0].QtyMin)
	require.Equal(t, 99, rows[0].QtyMax)
	require.Equal(t, "0.25", rows[0].Level4Max.String())

	require.Equal(t, "[Enterprise, Unlimited] Service Cloud", rows[1].ProductName)
	require.Nil(t, rows[1].Level2Max)
	require.Equal(t, "0.3", rows[1].Level4Max.String())

	require.Equal(t, "Tableau", rows[2].ProductName)
	require.True(t, rows[2].Level0Max.IsZero())
	require.Nil(t, rows[2].Level1Max)
}

func TestReadThresholdsRejectsBadRows(t *testing.T) {
	header := "product_name,qty_min,qty_max,level0,level1,level2,level3,level4\n"
	cases := []struct {
		name   string
		body   string
		line   int
		target error
	}{
		{"blank name", " ,1,10,0.1,,,,\n", 2, approval.ErrEmptyProductName},
		{"inverted band", "Slack,10,1,0.1,,,,\n", 2, approval.ErrInvalidBand},
		{"out of range", "Slack,1,10,1.5,,,,\n", 2, approval.ErrLevelOutOfRange},
		{"decreasing", "Slack,1,10,0.2,0.1,,,\n", 2, approval.ErrLevelsNotMonotonic},
		{"duplicate band", "Slack,1,10,0.1,,,,\nSlack,1,10,0.2,,,,\n", 3, ErrDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadThresholds(strings.NewReader(header + tc.body))
			require.ErrorIs(t, err, tc.target)
			var lineErr *LineError
			require.True(t, errors.As(err, &lineErr))
			require.Equal(t, tc.line, lineErr.Line)
		})
	}
}

func TestReadThresholdsParseErrors(t *testing.T) {
	header := "product_name,qty_min,qty_max,level0,level1,level2,level3,level4\n"

	_, err := ReadThresholds(strings.NewReader(header + "Slack,one,10,,,,,\n"))
	require.ErrorContains(t, err, "line 2: qty_min")

	_, err = ReadThresholds(strings.NewReader(header + "Slack,1,10,abc,,,,\n"))
	require.ErrorContains(t, err, "level0")

	_, err = ReadThresholds(strings.NewReader(header + "Slack,1,10\n"))
	require.ErrorContains(t, err, "read csv")
}

func TestReadHeaderValidation(t *testing.T) {
	_, err := ReadThresholds(strings.NewReader(""))
	require.ErrorIs(t, err, ErrHeader)

	_, err = ReadThresholds(strings.NewReader("name,qty_min,qty_max,level0,level1,level2,level3,level4\n"))
	require.ErrorIs(t, err, ErrHeader)

	rows, err := ReadPriceBook(strings.NewReader("\ufeffCategory, Edition ,MONTHLY_LIST_PRICE,annual_list_price\nSlack,,8.75,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestReadPriceBook(t *testing.T) {
	input := `category,edition,monthly_list_price,annual_list_price
Sales Cloud,Enterprise,165,1980
Sales Cloud,N/A,25,
Tableau,Creator,,900
`
	rows, err := ReadPriceBook(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "[Enterprise] Sales Cloud", rows[0].Name)
	require.Equal(t, "1980", rows[0].AnnualListPrice.String())

	require.Nil(t, rows[1].Edition)
	require.Equal(t, "Sales Cloud", rows[1].Name)
	require.Nil(t, rows[1].AnnualListPrice)

	require.True(t, rows[2].MonthlyListPrice.IsZero())
	require.Equal(t, "75", rows[2].MonthlyPrice().String())
}

func TestReadPriceBookNoEditionSentinelIgnoresCase(t *testing.T) {
	rows, err := ReadPriceBook(strings.NewReader("category,edition,monthly_list_price,annual_list_price\nSlack,n/a,8.75,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].Edition)
	require.Equal(t, "Slack", rows[0].Name)
}

func TestReadPriceBookRejectsBadRows(t *testing.T) {
	header := "category,edition,monthly_list_price,annual_list_price\n"
	cases := map[string]string{
		"empty category": ",Pro,10,\n",
		"no price":       "Slack,Pro,,\n",
		"negative":       "Slack,Pro,-1,\n",
		"not a number":   "Slack,Pro,ten,\n",
		"duplicate":      "Slack,Pro,10,\nSlack,pro,12,\n",
		"category case":  "Slack,Pro,10,\nSLACK,Pro,12,\n",
		"sentinel case":  "Slack,N/A,10,\nslack,n/a,12,\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPriceBook(strings.NewReader(header + body))
			var lineErr *LineError
			require.ErrorAs(t, err, &lineErr)
		})
	}
}
