package parser

import "testing"

func TestLocateHeaderSkipsMetadataRows(t *testing.T) {
	rows := [][]string{
		{"HDFC BANK Ltd."},
		{"Statement for A/C 1234 from 01/01/2025 to 31/01/2025"},
		{"Date", "Narration", "Chq./Ref.No.", "Value Dt", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"},
		{"02/01/2025", "NEFT CR-ACME", "REF1", "02/01/2025", "0", "15000", "50000"},
	}
	if got := LocateHeader(rows, 10); got != 2 {
		t.Errorf("LocateHeader = %d, want 2", got)
	}
}

func TestLocateHeaderFallsBackToFirstRow(t *testing.T) {
	rows := [][]string{
		{"just", "random", "cells"},
		{"more", "noise"},
	}
	if got := LocateHeader(rows, 10); got != 0 {
		t.Errorf("LocateHeader = %d, want 0", got)
	}
}

func TestLocateHeaderRespectsMaxScan(t *testing.T) {
	rows := make([][]string, 0, 6)
	for i := 0; i < 5; i++ {
		rows = append(rows, []string{"title row"})
	}
	rows = append(rows, []string{"Date", "Description", "Credit", "Debit"})

	if got := LocateHeader(rows, 3); got != 0 {
		t.Errorf("header beyond maxScan should fall back to 0, got %d", got)
	}
	if got := LocateHeader(rows, 10); got != 5 {
		t.Errorf("LocateHeader = %d, want 5", got)
	}
}
