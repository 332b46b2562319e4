// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// Shutdown limits how long a command waits for telemetry to flush on exit.
const Shutdown = 5 * time.Second

// StorageOpen caps the wait for the journal database to answer its first ping.
const StorageOpen = 3 * time.Second
