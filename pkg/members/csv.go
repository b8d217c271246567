package members

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
)

// Row is one line of the member export.
type Row struct {
	ID        string `csv:"id"`
	Email     string `csv:"email"`
	FirstName string `csv:"first_name"`
	LastName  string `csv:"last_name"`
	FullName  string `csv:"full_name"`
	Roles     string `csv:"roles"`
}

func rowOf(m *Member) Row {
	return Row{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		FullName:  m.FullName,
		Roles:     strings.Join(m.Roles, " "),
	}
}

// Export writes the members in [start, end] to csvPath and returns the
// number of rows written. A batch starting at 0 truncates the file and
// writes the header; later batches append.
func (a *Admin) Export(ctx context.Context, start, end int, csvPath string) (int, error) {
	ids, err := a.window(ctx, start, end)
	if err != nil {
		return 0, err
	}
	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		m, err := a.dir.Member(ctx, id)
		if err != nil {
			return 0, errors.Wrapf(err, errors.ErrMember, "cannot read member %s", id)
		}
		if m != nil {
			rows = append(rows, rowOf(m))
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if start > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(csvPath, flags, 0644)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "cannot open %s", csvPath)
	}
	defer func() { _ = f.Close() }()

	if start == 0 {
		err = gocsv.Marshal(&rows, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(&rows, f)
	}
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", csvPath)
	}
	logger := logging.GetLogger("members")
	logger.Info().Str("path", csvPath).Int("rows", len(rows)).Msg("Exported members")
	return len(rows), nil
}

// CSVName returns `<name>-YYYYMMDD.csv` when datestamp is set, else
// `<name>.csv`.
func CSVName(name string, datestamp bool, now time.Time) string {
	if datestamp {
		return name + "-" + now.Format("20060102") + ".csv"
	}
	return name + ".csv"
}

// WriteCSV writes rows under fieldnames to the file named by CSVName,
// always with a header row, and returns the path. Missing keys are
// written as empty cells.
func WriteCSV(fieldnames []string, rows []map[string]string, name string, datestamp bool, now time.Time) (string, error) {
	path := CSVName(name, datestamp, now)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	defer func() { _ = f.Close() }()

	w := gocsv.DefaultCSVWriter(f)
	if err := w.Write(fieldnames); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	record := make([]string, len(fieldnames))
	for _, row := range rows {
		for i, name := range fieldnames {
			record[i] = row[name]
		}
		if err := w.Write(record); err != nil {
			return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return path, nil
}
