package redis

import (
	"fmt"

	"github.com/mcoot/petbattle/internal/model"
)

// Key prefix for all battle-related data
const keyPrefix = "petbattle"

// Key generation functions for each entity type

// battleKey returns the Redis key for a program's Battle
func battleKey(programID model.ActorID) string {
	return fmt.Sprintf("%s:battle:%s", keyPrefix, programID)
}

// accountKey returns the Redis key for the Account claiming an address
func accountKey(address model.ActorID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, address)
}

// notificationsKey returns the Redis key for the LIST of an actor's notifications
func notificationsKey(recipient model.ActorID) string {
	return fmt.Sprintf("%s:notifications:%s", keyPrefix, recipient)
}

// delayedKey returns the Redis key for a DelayedMessage
func delayedKey(id string) string {
	return fmt.Sprintf("%s:delayed:%s", keyPrefix, id)
}

// delayedIndexKey returns the Redis key for the ZSET of delayed message ids by due time
func delayedIndexKey() string {
	return fmt.Sprintf("%s:idx:delayed_due", keyPrefix)
}
