// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/njord/internal/config"
	"github.com/relabs-tech/njord/internal/imu"
	"github.com/relabs-tech/njord/internal/sensors"
)

// samplePayload is the JSON published for each kept sample.
type samplePayload struct {
	Time       time.Time `json:"time"`
	ElapsedSec float64   `json:"elapsed_s"`
	imu.Sample
}

// publisher forwards kept samples and status to MQTT without blocking the
// sampling loop.
type publisher struct {
	client       mqtt.Client
	topicSamples string
	topicStatus  string
}

func newPublisher(cfg *config.Config) (*publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)
	return &publisher{
		client:       client,
		topicSamples: cfg.TopicSamples,
		topicStatus:  cfg.TopicStatus,
	}, nil
}

func (p *publisher) publish(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("json marshal error (%s): %v", topic, err)
		return
	}
	token := p.client.Publish(topic, 0, retained, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Debugf("MQTT publish error (%s): %v", topic, token.Error())
		}
	}()
}

func (p *publisher) OnSample(r sensors.Reading) {
	p.publish(p.topicSamples, false, samplePayload{
		Time:       r.Time(),
		ElapsedSec: r.Elapsed.Seconds(),
		Sample:     r.Sample,
	})
}

func (p *publisher) OnStatus(s Status) {
	p.publish(p.topicStatus, true, s)
}

func (p *publisher) Close() {
	p.client.Disconnect(250)
}
