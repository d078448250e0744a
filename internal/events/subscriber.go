package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CommandsChannel receives operator commands such as aborting a match.
const CommandsChannel = "duel:commands"

const CommandAbort = "abort"

type Command struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

// SubscribeToCommands listens on CommandsChannel until ctx is done and calls
// handle for every well-formed command.
func SubscribeToCommands(ctx context.Context, rdb *redis.Client, logger *zap.Logger, handle func(Command)) error {
	pubsub := rdb.Subscribe(ctx, CommandsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logger.Info("Subscribed to command channel", zap.String("channel", CommandsChannel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var cmd Command
			if err := json.Unmarshal([]byte(msg.Payload), &cmd); err != nil {
				logger.Warn("Failed to parse command", zap.Error(err))
				continue
			}
			if cmd.Type == "" || cmd.MatchID == "" {
				logger.Warn("Ignoring incomplete command", zap.String("payload", msg.Payload))
				continue
			}
			handle(cmd)
		}
	}
}
