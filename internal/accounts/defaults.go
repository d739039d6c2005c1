package accounts

import "github.com/cleared-dev/stmtimport/internal/model"

// DefaultChart returns the starter chart of accounts for a legal form.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "sole_proprietorship", "gmbh", "ag":
		return swissSMEChart()
	default:
		return swissSMEChart()
	}
}

// swissSMEChart is a short extract of the Swiss SME chart of accounts.
func swissSMEChart() []model.Account {
	return []model.Account{
		{ID: "1000", Name: "Kasse", Type: model.AccountTypeAsset, Description: "Cash"},
		{ID: "1020", Name: "Bankguthaben", Type: model.AccountTypeAsset, Description: "Main business bank account"},
		{ID: "1025", Name: "Bankguthaben EUR", Type: model.AccountTypeAsset, ParentID: "1020", Description: "Foreign currency account"},
		{ID: "1100", Name: "Forderungen aus Lieferungen und Leistungen", Type: model.AccountTypeAsset},
		{ID: "1170", Name: "Vorsteuer MWST Material, Waren, Dienstleistungen", Type: model.AccountTypeAsset, Description: "Input VAT"},
		{ID: "1171", Name: "Vorsteuer MWST Investitionen, übriger Betriebsaufwand", Type: model.AccountTypeAsset, Description: "Input VAT on overhead"},
		{ID: "2000", Name: "Verbindlichkeiten aus Lieferungen und Leistungen", Type: model.AccountTypeLiability},
		{ID: "2200", Name: "Geschuldete MWST", Type: model.AccountTypeLiability, Description: "Output VAT"},
		{ID: "2800", Name: "Eigenkapital", Type: model.AccountTypeEquity},
		{ID: "3000", Name: "Dienstleistungserlöse", Type: model.AccountTypeRevenue, VATCode: "UN81"},
		{ID: "3200", Name: "Handelserlöse", Type: model.AccountTypeRevenue, VATCode: "UN81"},
		{ID: "4200", Name: "Handelswarenaufwand", Type: model.AccountTypeExpense, VATCode: "VM81"},
		{ID: "5000", Name: "Lohnaufwand", Type: model.AccountTypeExpense},
		{ID: "6000", Name: "Raumaufwand", Type: model.AccountTypeExpense, Description: "Rent"},
		{ID: "6280", Name: "Fahrzeug- und Transportaufwand", Type: model.AccountTypeExpense, VATCode: "VI81"},
		{ID: "6500", Name: "Verwaltungsaufwand", Type: model.AccountTypeExpense, VATCode: "VI81"},
		{ID: "6510", Name: "Telefon und Internet", Type: model.AccountTypeExpense, ParentID: "6500", VATCode: "VI81"},
		{ID: "6570", Name: "Informatikaufwand", Type: model.AccountTypeExpense, ParentID: "6500", VATCode: "VI81", Description: "Software subscriptions"},
		{ID: "6900", Name: "Finanzaufwand", Type: model.AccountTypeExpense, Description: "Bank charges and interest"},
	}
}
