package leaderboardservice

import (
	"context"
	"fmt"
	"time"

	leaderboarddomain "github.com/Gr33nOps/VTcade/app/modules/leaderboard/domain"
	"github.com/Gr33nOps/VTcade/pkg/results"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Leaderboard"

var exportHeader = []any{"Rank", "Player", "Score", "Achieved At (UTC)", "Flagged"}

// ExportGame renders the full ranked leaderboard of a game as an xlsx workbook.
func (s *LeaderboardService) ExportGame(ctx context.Context, gameID string) ([]byte, error) {
	return unwrap(withTelemetry(s, ctx, "ExportGame", gameID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		gameID, err := normalizeID("game id", gameID)
		if err != nil {
			return results.FailureResult[[]byte, error](err), nil
		}

		standings, err := s.engine.Snapshot(ctx, gameID)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}

		data, err := renderWorkbook(gameID, standings)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render workbook: %w", err)
		}
		return results.SuccessResult[[]byte, error](data), nil
	}))
}

func renderWorkbook(gameID string, standings []leaderboarddomain.Standing) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("%s leaderboard", gameID),
		Creator: "VTcade",
	}); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, st := range standings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{st.Rank, st.PlayerID, st.Score, st.UpdatedAt.UTC().Format(time.RFC3339), st.Flagged}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "D", "D", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
