package service

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"bloodlink/internal/domain"
)

// CSVHeader is the first row of a donor export.
const CSVHeader = "Name,Age,Gender,Blood Group,Phone,Email,City,Last Donation"

// WriteDonorsCSV writes one row per donor. Name, phone, email and city are
// always quoted.
func WriteDonorsCSV(w io.Writer, donors []domain.Donor) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(CSVHeader)
	for _, d := range donors {
		bw.WriteByte('\n')
		fields := []string{
			quote(d.Name),
			strconv.Itoa(d.Age.Int()),
			d.Gender,
			d.BloodGroup.String(),
			quote(d.Phone),
			quote(d.Email),
			quote(d.City),
			d.LastDonation,
		}
		bw.WriteString(strings.Join(fields, ","))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
