package scoreservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	scoreevents "github.com/Gr33nOps/VTcade/app/modules/score/domain/events"
	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// publishBestScoreRaised announces a new personal best. RaisedAt is the
// record's updated_at, the timestamp ties are ranked on.
// This is fire-and-forget: failures are logged but never change the submission result.
func (s *ScoreService) publishBestScoreRaised(ctx context.Context, best scoredb.BestScore, submitted int64) {
	payload := &scoreevents.BestScoreRaisedPayloadV1{
		PlayerID:  best.PlayerID,
		GameID:    best.GameID,
		Score:     best.Score,
		Submitted: submitted,
		RaisedAt:  best.UpdatedAt.UTC(),
	}
	s.publish(ctx, scoreevents.BestScoreRaisedV1, payload, map[string]string{
		"player_id": best.PlayerID,
		"game_id":   best.GameID,
		"score":     strconv.FormatInt(best.Score, 10),
	})
}

// publishGameReset announces an administrative reset.
func (s *ScoreService) publishGameReset(ctx context.Context, gameID string, deleted int) {
	payload := &scoreevents.GameResetPayloadV1{
		GameID:  gameID,
		Deleted: deleted,
		ResetAt: s.now().UTC(),
	}
	s.publish(ctx, scoreevents.GameResetV1, payload, map[string]string{
		"game_id": gameID,
	})
}

func (s *ScoreService) publish(ctx context.Context, topic string, payload any, metadata map[string]string) {
	if s.publisher == nil {
		return
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to marshal event payload",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payloadBytes)
	msg.Metadata.Set("topic", topic)
	for k, v := range metadata {
		msg.Metadata.Set(k, v)
	}

	if err := s.publisher.Publish(topic, msg); err != nil {
		s.metrics.RecordEventPublishFailure(ctx, topic)
		s.logger.WarnContext(ctx, "Failed to publish event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}

	s.logger.DebugContext(ctx, "Published event", slog.String("topic", topic))
}
