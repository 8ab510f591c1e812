package mq

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/stock-service/pkg/circuitbreaker"
)

// ResilientPublisher 带熔断保护的消息发布者
//
// 事件发布是尽力而为的旁路：RabbitMQ故障时不能让每次发放
// 都等待一个连接超时。连续失败后熔断器打开，发布立即失败
// （调用方只记日志），超时后自动探测恢复。
type ResilientPublisher struct {
	inner   *Publisher
	breaker *circuitbreaker.CircuitBreaker
}

// NewResilientPublisher 包装发布者并附加熔断器
func NewResilientPublisher(inner *Publisher) *ResilientPublisher {
	cb := circuitbreaker.NewCircuitBreaker("mq-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[WARN] 熔断器%s状态变化: %s -> %s", name, from, to)
	})

	return &ResilientPublisher{
		inner:   inner,
		breaker: cb,
	}
}

// Publish 经熔断器发布消息
// 熔断器打开时返回circuitbreaker.ErrOpenState，不访问broker
func (p *ResilientPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return p.breaker.Execute(func() error {
		return p.inner.Publish(ctx, routingKey, message)
	})
}

// Close 关闭底层发布者
func (p *ResilientPublisher) Close() error {
	return p.inner.Close()
}
