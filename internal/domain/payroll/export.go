package payroll

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rhmaster/internal/domain/core"
)

// FormatAmount renders v with two decimals and a comma separator.
func FormatAmount(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

func orMissing(value string) string {
	if strings.TrimSpace(value) == "" {
		return MissingValue
	}
	return value
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}

func fileDate(value string) string {
	return strings.ReplaceAll(value, "/", fileDateSeparator)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, csvByteOrderMark); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.Comma = csvDelimiter
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

var rosterHeader = []string{
	"Nome Completo", "Cargo/Função", "Data Admissão", "Data Demissão", "Data Nascimento",
	"CPF", "RG", "PIS", "CTPS", "Título Eleitor",
	"Telefone", "Endereço", "Cidade", "UF", "CEP",
	"Nome do Pai", "Nome da Mãe", "Salário Base", "Acúmulo de Função",
}

func WriteRosterCSV(w io.Writer, employees []core.Employee) error {
	rows := make([][]string, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, []string{
			emp.Name, emp.Role, emp.AdmissionDate, orMissing(emp.DismissalDate), emp.BirthDate,
			emp.CPF, emp.RG, emp.PIS, emp.CTPS, emp.VoterID,
			emp.Phone, emp.Address, emp.City, emp.State, emp.CEP,
			emp.FatherName, emp.MotherName, FormatAmount(emp.Salary), FormatAmount(emp.RoleAccumulation),
		})
	}
	return writeCSV(w, rosterHeader, rows)
}

var batchHeader = []string{
	"Empresa", "Nome", "Cargo", "Salário Base", "Acúmulo",
	"Outros Rend.", "Prêmios", "Cesta Básica", "VR", "HE 100%", "HE 70%", "HE 50%", "VT",
	"Adiantamentos", "Faltas (Dias)", "Empréstimos", "Farmácia", "Supermercado",
	"Odonto", "Médico", "Convênios", "Desc. Diversos", "Líquido Final",
}

func WriteBatchCSV(w io.Writer, lines []Line) error {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		emp, adj := line.Employee, line.Adjustments
		rows = append(rows, []string{
			orMissing(string(emp.Company)), emp.Name, emp.Role,
			FormatAmount(emp.Salary), FormatAmount(emp.RoleAccumulation),
			FormatAmount(adj.OtherIncome), FormatAmount(adj.Bonuses), FormatAmount(adj.BasicBasket), FormatAmount(adj.VR),
			FormatAmount(adj.OT100), FormatAmount(adj.OT70), FormatAmount(adj.OT50), yesNo(adj.VT),
			FormatAmount(adj.Advances), FormatAmount(adj.Absences), FormatAmount(adj.Loans),
			FormatAmount(adj.Pharmacy), FormatAmount(adj.Supermarket), FormatAmount(adj.Dental),
			FormatAmount(adj.Medical), FormatAmount(adj.OtherConvenios), FormatAmount(adj.OtherDiscounts),
			FormatAmount(line.Net),
		})
	}
	return writeCSV(w, batchHeader, rows)
}

var advancesHeader = []string{
	"Funcionario", "Cargo", "Salario Base", "Acumulo de Funcao", "Adiantamento (40%)",
	"Outros Adiantamentos", "Total Geral", "Observações", "Periodo Inicio", "Periodo Fim",
}

func WriteAdvancesCSV(w io.Writer, sheet AdvanceSheet, lines []AdvanceLine) error {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []string{
			line.Employee.Name, line.Employee.Role,
			FormatAmount(line.Employee.Salary), FormatAmount(line.Employee.RoleAccumulation),
			FormatAmount(line.Base), FormatAmount(line.OtherAdvances), FormatAmount(line.Total),
			line.Observations, orMissing(sheet.PeriodStart), orMissing(sheet.PeriodEnd),
		})
	}
	return writeCSV(w, advancesHeader, rows)
}

func RosterFileName(now time.Time) string {
	return "cadastro_funcionarios_" + fileDate(core.FormatDate(now)) + ".csv"
}

func BatchFileName(company core.Company, closingDate string) string {
	return "folha_" + company.Label() + "_" + fileDate(closingDate) + ".csv"
}

func AdvancesFileName(now time.Time) string {
	return "relatorio_adiantamentos_" + fileDate(core.FormatDate(now)) + ".csv"
}
