package model

import "time"

// Account binds an actor address to the secret that proves control of it
type Account struct {
	Address    ActorID   `json:"address"`
	SecretHash string    `json:"secret_hash"`
	CreatedAt  time.Time `json:"created_at"`
}
