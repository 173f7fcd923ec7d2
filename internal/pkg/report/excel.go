package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

const maxSheetTitle = 25

var sheetTitleReplacer = regexp.MustCompile(`[:\\/*?\[\]]`)

// SheetTitle makes a competition name usable as a sheet name.
func SheetTitle(name string) string {
	cleaned := []rune(sheetTitleReplacer.ReplaceAllString(name, "_"))
	if len(cleaned) > maxSheetTitle {
		cleaned = cleaned[:maxSheetTitle]
	}
	return string(cleaned)
}

// FileName is the workbook name for bookmaker on day.
func FileName(bookmaker string, day time.Time) string {
	return fmt.Sprintf("Extract_%s_%s.xlsx", bookmaker, day.Format("2006-01-02"))
}

type Options struct {
	// Bookmaker names the columns and the file. Defaults to the first row's bookmaker.
	Bookmaker string
	ExportDir string
	Kelly     float64
	Stake     float64
	Location  *time.Location
}

// Exporter builds workbooks from odds tables.
type Exporter struct {
	opts Options
	now  func() time.Time
}

func NewExporter(opts Options) *Exporter {
	if opts.Kelly == 0 {
		opts.Kelly = 4
	}
	if opts.Stake == 0 {
		opts.Stake = 20
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Exporter{opts: opts, now: time.Now}
}

func (e *Exporter) bookmaker(t models.Table) string {
	if e.opts.Bookmaker != "" {
		return e.opts.Bookmaker
	}
	for _, r := range t.Rows {
		if r.Bookmaker != "" {
			return r.Bookmaker
		}
	}
	return "Bookmaker"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Headers returns the column titles of every sheet.
func (e *Exporter) Headers(bookmaker string) []string {
	return []string{
		"Extraction",
		"Cutoff_" + bookmaker,
		"Competition",
		"Event",
		"Competitor_" + bookmaker,
		"Odd_" + bookmaker,
		"Odd_PS3838", // G, filled in by hand
		"TrueOdds_MPTO",
		"ImpliedProb",
		"TrueProb_MPTO",
		"TRJ",
		"%_boost",
		"Kelly_" + formatNumber(e.opts.Kelly),
		"Stake_" + formatNumber(e.opts.Stake),
		"Potential_Payout",
		"Surebet",
		"TRJ_Book",
	}
}

// rowFormulas returns the formulas of columns H to O for row n.
func rowFormulas(n int) map[string]string {
	kelly := `VALUE(RIGHT($M$1,LEN($M$1)-FIND("_",$M$1)))`
	stake := `VALUE(RIGHT($N$1,LEN($N$1)-FIND("_",$N$1)))`
	return map[string]string{
		"H": fmt.Sprintf(`IF(G%[1]d<>"",((COUNTIF(D:D,D%[1]d)*G%[1]d)/(COUNTIF(D:D,D%[1]d)-(SUMIF(D:D,D%[1]d,I:I)-1)*G%[1]d)),"")`, n),
		"I": fmt.Sprintf(`IF(G%[1]d<>"",1/G%[1]d,"")`, n),
		"J": fmt.Sprintf(`IF(H%[1]d<>"",1/H%[1]d,"")`, n),
		"L": fmt.Sprintf(`IF(AND(F%[1]d<>"",H%[1]d<>""),F%[1]d/H%[1]d-1,"")`, n),
		"M": fmt.Sprintf(`IF(H%[1]d="","",((F%[1]d-1)*(1/H%[1]d)-(1-(1/H%[1]d)))/(F%[1]d-1)/%[2]s)`, n, kelly),
		"N": fmt.Sprintf(`IFERROR(IF(H%[1]d="","",((F%[1]d-1)*(1/H%[1]d)-(1-(1/H%[1]d)))/(F%[1]d-1)/%[2]s*%[3]s)*100,"")`, n, kelly, stake),
		"O": fmt.Sprintf(`IF(OR(F%[1]d="",N%[1]d=""),"",F%[1]d*N%[1]d)`, n),
	}
}

// pairFormulas returns the K, P and Q formulas of row a, paired with row b.
func pairFormulas(a, b int) map[string]string {
	return map[string]string{
		"K": fmt.Sprintf(`IF(AND(F%[1]d<>"",G%[2]d<>""),1/((1/F%[1]d)+(1/G%[2]d)),"")`, a, b),
		"P": fmt.Sprintf(`IF(AND(F%[1]d<>"",G%[2]d<>""),IF(1/((1/F%[1]d)+(1/G%[2]d))>1,"YES","NO"),"")`, a, b),
		"Q": fmt.Sprintf(`IF(AND(F%[1]d<>"",F%[2]d<>""),1/((1/F%[1]d)+(1/F%[2]d)),"")`, a, b),
	}
}

type sheetStyles struct {
	header, cell, date, decimal, percent, euro int
	white, orange, green                       int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	numFmt := func(format string) *excelize.Style {
		return &excelize.Style{Border: border, Alignment: center, CustomNumFmt: &format}
	}
	fill := func(color string) *excelize.Style {
		return &excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}}
	}

	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: center,
		Border:    border,
	}); err != nil {
		return s, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{Border: border, Alignment: center}); err != nil {
		return s, err
	}
	if s.date, err = f.NewStyle(numFmt("dd/mm/yyyy hh:mm")); err != nil {
		return s, err
	}
	if s.decimal, err = f.NewStyle(numFmt("0.000")); err != nil {
		return s, err
	}
	if s.percent, err = f.NewStyle(numFmt("0.0%")); err != nil {
		return s, err
	}
	if s.euro, err = f.NewStyle(numFmt("€#,##0")); err != nil {
		return s, err
	}
	if s.white, err = f.NewConditionalStyle(fill("FFFFFF")); err != nil {
		return s, err
	}
	if s.orange, err = f.NewConditionalStyle(fill("FFD966")); err != nil {
		return s, err
	}
	if s.green, err = f.NewConditionalStyle(fill("C6EFCE")); err != nil {
		return s, err
	}
	return s, nil
}

// Build creates the workbook of t. Sheets follow Summarize order.
func (e *Exporter) Build(t models.Table) (*excelize.File, error) {
	bookmaker := e.bookmaker(t)
	headers := e.Headers(bookmaker)
	summaries := Summarize(t)
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no competition to export")
	}

	f := excelize.NewFile()
	styles, err := newSheetStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create styles: %w", err)
	}

	used := make(map[string]bool)
	for i, s := range summaries {
		title := uniqueTitle(SheetTitle(s.Competition), used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", title); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(title); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", title, err)
		}
		if err := e.writeSheet(f, title, headers, filterCompetition(t, s.Competition), styles); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", title, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func uniqueTitle(title string, used map[string]bool) string {
	candidate := title
	for n := 2; used[candidate]; n++ {
		suffix := "_" + strconv.Itoa(n)
		base := []rune(title)
		if len(base)+len(suffix) > maxSheetTitle {
			base = base[:maxSheetTitle-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[candidate] = true
	return candidate
}

func filterCompetition(t models.Table, competition string) []models.OddsRow {
	var rows []models.OddsRow
	for _, r := range t.Rows {
		if r.Competition != nil && *r.Competition == competition {
			rows = append(rows, r)
		}
	}
	return rows
}

func (e *Exporter) localTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	// Excel has no time zones: write wall-clock time in the export location.
	local := t.In(e.opts.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func (e *Exporter) writeSheet(f *excelize.File, sheet string, headers []string, rows []models.OddsRow, st sheetStyles) error {
	zoom := 70.0
	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{ZoomScale: &zoom}); err != nil {
		return err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "Q1", st.header); err != nil {
		return err
	}

	widths := make([]int, 6)
	for i, h := range headers[:6] {
		widths[i] = len([]rune(h))
	}

	for i, r := range rows {
		n := i + 2
		var odd interface{}
		if r.Odd != nil {
			odd = *r.Odd
		}
		values := []interface{}{
			e.localTime(&r.ExtractedAt),
			e.localTime(r.Cutoff),
			deref(r.Competition),
			deref(r.Event),
			deref(r.Competitor),
			odd,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", n), &values); err != nil {
			return err
		}
		for col, formula := range rowFormulas(n) {
			if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, n), formula); err != nil {
				return err
			}
		}
		for j, v := range []interface{}{deref(r.Competition), deref(r.Event), deref(r.Competitor)} {
			if s, ok := v.(string); ok && len([]rune(s)) > widths[j+2] {
				widths[j+2] = len([]rune(s))
			}
		}
		if r.Odd != nil {
			if l := len(formatNumber(*r.Odd)); l > widths[5] {
				widths[5] = l
			}
		}
	}

	// K, P and Q compare consecutive rows two by two.
	for a := 2; a+1 <= len(rows)+1; a += 2 {
		b := a + 1
		for _, pair := range [][2]int{{a, b}, {b, a}} {
			for col, formula := range pairFormulas(pair[0], pair[1]) {
				if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, pair[0]), formula); err != nil {
					return err
				}
			}
		}
	}

	if len(rows) == 0 {
		return nil
	}
	last := len(rows) + 1
	for _, span := range []struct {
		from, to string
		style    int
	}{
		{"A", "B", st.date},
		{"C", "G", st.cell},
		{"H", "J", st.decimal},
		{"K", "M", st.percent},
		{"N", "O", st.euro},
		{"P", "Q", st.cell},
	} {
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", span.from), fmt.Sprintf("%s%d", span.to, last), span.style); err != nil {
			return err
		}
	}

	// Dates render as 16 characters.
	widths[0], widths[1] = max(widths[0], 16), max(widths[1], 16)
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, max(12, float64(w)+0.25)); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "G", "Q", 14); err != nil {
		return err
	}

	rng := fmt.Sprintf("A2:Q%d", last)
	return f.SetConditionalFormat(sheet, rng, []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: `$P2=""`, Format: &st.white},
		{Type: "formula", Criteria: `AND($P2="NO",$L2<0)`, Format: &st.white},
		{Type: "formula", Criteria: `AND($L2>0,$P2<>"YES")`, Format: &st.orange},
		{Type: "formula", Criteria: `$P2="YES"`, Format: &st.green},
	})
}

// WriteExcel builds the workbook of t and saves it in the export directory.
func (e *Exporter) WriteExcel(t models.Table) (string, error) {
	f, err := e.Build(t)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(e.opts.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.opts.ExportDir, FileName(e.bookmaker(t), e.now()))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// Export is the JSON rendering of an extraction.
type Export struct {
	Timestamp    string               `json:"timestamp"`
	Bookmaker    string               `json:"bookmaker"`
	TotalRows    int                  `json:"total_rows"`
	Competitions []CompetitionSummary `json:"competitions"`
	Rows         []models.OddsRow     `json:"rows"`
}

// WriteJSON writes t and its summary as indented JSON.
func (e *Exporter) WriteJSON(w io.Writer, t models.Table) error {
	export := Export{
		Timestamp:    e.now().UTC().Format(time.RFC3339),
		Bookmaker:    e.bookmaker(t),
		TotalRows:    t.Len(),
		Competitions: Summarize(t),
		Rows:         t.Rows,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(export)
}
