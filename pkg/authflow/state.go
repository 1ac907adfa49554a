package authflow

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
)

// EncodeState serializes the callback state into the opaque form carried
// through the identity provider: base64 of UTF-8 JSON.
func EncodeState(st CallbackState) (string, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeState parses an opaque state token. Decoding never fails: absent or
// malformed input degrades to the default flow on the shared realm, because
// a broken state parameter must not abort an otherwise valid callback. The
// degradation is logged at warn level.
//
// Unknown JSON fields are ignored and missing fields are defaulted, keeping
// the wire format forward and backward compatible.
func DecodeState(opaque string, log *slog.Logger) CallbackState {
	fallback := CallbackState{Flow: FlowDefault, Realm: DefaultRealm}
	if opaque == "" {
		return fallback
	}

	raw, err := base64.StdEncoding.DecodeString(opaque)
	if err != nil {
		// Some callers URL-encode the state, which swaps padding for %3D and
		// may strip it entirely.
		if raw, err = base64.RawStdEncoding.DecodeString(opaque); err != nil {
			if log != nil {
				log.Warn("callback state is not valid base64, using defaults", "error", err)
			}
			return fallback
		}
	}

	var st CallbackState
	if err := json.Unmarshal(raw, &st); err != nil {
		if log != nil {
			log.Warn("callback state is not valid JSON, using defaults", "error", err)
		}
		return fallback
	}

	if st.Flow == "" {
		st.Flow = FlowDefault
	}
	if st.Realm == "" {
		st.Realm = DefaultRealm
	}
	return st
}
