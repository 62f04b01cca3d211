// Package scouterr defines the typed error kinds shared across the gateway.
//
// Executors, the pool, and the router all return errors wrapping one of
// these sentinels so the dispatcher (and tests) can classify a failure
// with errors.Is without parsing message strings.
package scouterr

import "errors"

var (
	// ErrInvalidTarget marks malformed input to ParseTarget/ParseResourceURI.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrUnknownHost marks a host name absent from the loaded host table.
	ErrUnknownHost = errors.New("unknown host")
	// ErrConnectFailed marks an SSH session that could not be established
	// after the dispatcher's one retry.
	ErrConnectFailed = errors.New("connect failed")
	// ErrPathNotFound marks a stat_path miss.
	ErrPathNotFound = errors.New("path not found")
	// ErrResourceNotFound marks a matched resource pattern whose underlying
	// object (container, compose project, zfs pool) does not exist.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrFeatureUnavailable marks a required remote binary that is absent
	// (docker, compose, zfs).
	ErrFeatureUnavailable = errors.New("feature unavailable")
	// ErrReadFailed marks an executor that ran but could not retrieve its
	// payload.
	ErrReadFailed = errors.New("read failed")
	// ErrPoolFull marks a connection pool at its configured MaxHosts cap.
	ErrPoolFull = errors.New("connection pool full")
)

// Kind returns the advisory error-kind name used for counters and log
// fields (spec §3 ErrorCounter, §7). Unrecognized errors return "Internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTarget):
		return "InvalidTarget"
	case errors.Is(err, ErrUnknownHost):
		return "UnknownHost"
	case errors.Is(err, ErrConnectFailed):
		return "ConnectFailed"
	case errors.Is(err, ErrPathNotFound):
		return "PathNotFound"
	case errors.Is(err, ErrResourceNotFound):
		return "ResourceNotFound"
	case errors.Is(err, ErrFeatureUnavailable):
		return "FeatureUnavailable"
	case errors.Is(err, ErrReadFailed):
		return "ReadFailed"
	case errors.Is(err, ErrPoolFull):
		return "PoolFull"
	default:
		return "Internal"
	}
}
