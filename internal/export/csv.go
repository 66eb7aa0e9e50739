package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSV writes one header row ("t" followed by the labels of the used slots)
// and one row per sample.
func CSV(w io.Writer, run Run) error {
	cw := csv.NewWriter(w)

	slots := run.Labels.Slots()
	header := append([]string{"t"}, run.Labels.Used()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < run.Traj.Len(); i++ {
		s := run.Traj.At(i)
		row[0] = strconv.FormatFloat(s.T, 'g', -1, 64)
		for j, k := range slots {
			row[j+1] = strconv.FormatFloat(s.Y[k], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
