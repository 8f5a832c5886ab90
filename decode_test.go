package main

import (
	"testing"

	"mbtrace/pkg/decoder"
	"mbtrace/pkg/pcap"
)

func TestRTACChannel(t *testing.T) {
	tests := []struct {
		eventType byte
		want      decoder.Channel
		ok        bool
	}{
		{pcap.EventTxStart, decoder.ChannelB, true},
		{pcap.EventRxStart, decoder.ChannelA, true},
		{pcap.EventStatusChange, decoder.ChannelA, false},
		{0x7F, decoder.ChannelA, false},
	}
	for _, tt := range tests {
		got, ok := rtacChannel(tt.eventType)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("rtacChannel(%d) = %v, %v; want %v, %v",
				tt.eventType, got, ok, tt.want, tt.ok)
		}
	}
}
