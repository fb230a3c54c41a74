package kv

import (
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSStore implements Store on a JetStream key-value bucket
type NATSStore struct {
	kv nats.KeyValue
}

// NewNATSStore binds to bucket, creating it when it does not exist yet
func NewNATSStore(js nats.JetStreamContext, bucket string) (*NATSStore, error) {
	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "draft kit persisted state",
			History:     1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open KV bucket %s: %w", bucket, err)
	}
	return &NATSStore{kv: kv}, nil
}

func (s *NATSStore) Get(key string) (string, bool, error) {
	entry, err := s.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(entry.Value()), true, nil
}

func (s *NATSStore) Set(key, value string) error {
	_, err := s.kv.PutString(key, value)
	return err
}

func (s *NATSStore) Remove(key string) error {
	err := s.kv.Delete(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil
	}
	return err
}
