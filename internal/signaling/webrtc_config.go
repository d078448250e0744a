package signaling

import (
	"github.com/pion/webrtc/v3"
)

// DefaultSTUNServers are the public STUN servers handed to clients when none
// are configured.
var DefaultSTUNServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
}

// ICEConfig describes the servers clients use for both negotiation channels.
type ICEConfig struct {
	STUNServers  []string
	TURNURL      string
	TURNUsername string
	TURNPassword string
}

type WebRTCConfig struct {
	ICEServers           []webrtc.ICEServer `json:"iceServers"`
	ICECandidatePoolSize uint8              `json:"iceCandidatePoolSize"`
}

// BuildWebRTCConfig returns the configuration served to clients.
func BuildWebRTCConfig(cfg ICEConfig) WebRTCConfig {
	stunServers := cfg.STUNServers
	if len(stunServers) == 0 {
		stunServers = DefaultSTUNServers
	}

	var iceServers []webrtc.ICEServer
	for _, stun := range stunServers {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs: []string{stun},
		})
	}

	if cfg.TURNURL != "" {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:           []string{cfg.TURNURL},
			Username:       cfg.TURNUsername,
			Credential:     cfg.TURNPassword,
			CredentialType: webrtc.ICECredentialTypePassword,
		})
	}

	return WebRTCConfig{
		ICEServers:           iceServers,
		ICECandidatePoolSize: 10,
	}
}
