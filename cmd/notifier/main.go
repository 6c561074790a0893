// 借阅事件通知Worker
//
// 订阅API进程发布的借阅/预约事件并发送通知(当前实现输出到日志,
// 接入邮件/短信网关时只需替换handleEvent内的分发逻辑)。
//
// 与API进程的关系:
//   - API在事务提交后发布事件(尽最大努力投递)
//   - Worker消费失败NACK重新入队,通知不丢但可能重复
//   - 通知去重靠事件里的业务UID(loan_uid/reservation_uid)
//
// 启动方式:
//
//	go run cmd/notifier/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiebiao/elibrary/internal/infrastructure/config"
	"github.com/xiebiao/elibrary/pkg/mq"
)

// loanEvent 借阅事件载荷(与发布方internal/application/loan保持一致)
type loanEvent struct {
	LoanUID   string `json:"loan_uid"`
	BookID    uint   `json:"book_id"`
	UserID    uint   `json:"user_id"`
	DueDate   string `json:"due_date"`
	Timestamp string `json:"timestamp"`
}

// reservationEvent 预约事件载荷
type reservationEvent struct {
	ReservationUID string `json:"reservation_uid"`
	BookID         uint   `json:"book_id"`
	UserID         uint   `json:"user_id"`
	ExpiryDate     string `json:"expiry_date"`
	Timestamp      string `json:"timestamp"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if !cfg.MQ.Enabled {
		log.Fatal("MQ未启用(mq.enabled=false),通知Worker无事可做")
	}

	// 队列绑定loan.*与reservation.*两族路由键
	consumer, err := mq.NewConsumer(
		cfg.MQ.URL,
		cfg.MQ.Exchange,
		"topic",
		"elibrary.notifications",
		[]string{"loan.*", "reservation.*"},
	)
	if err != nil {
		log.Fatalf("创建消费者失败: %v", err)
	}
	defer consumer.Close()

	// SIGINT/SIGTERM取消消费循环
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("通知Worker已启动,等待借阅事件...")
	if err := consumer.Consume(ctx, handleEvent); err != nil && ctx.Err() == nil {
		log.Fatalf("消费异常退出: %v", err)
	}
	log.Println("通知Worker已退出")
}

// handleEvent 按路由键分发事件
// 返回error会触发NACK重新入队,只对解析失败以外的错误返回error
// (畸形消息重试也不会成功,ACK掉并记日志)
func handleEvent(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case "loan.issued", "loan.returned", "loan.renewed":
		var event loanEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Printf("丢弃畸形借阅事件 [%s]: %v", routingKey, err)
			return nil
		}
		notify(routingKey, fmt.Sprintf("user=%d book=%d loan=%s due=%s",
			event.UserID, event.BookID, event.LoanUID, event.DueDate))

	case "reservation.created", "reservation.cancelled":
		var event reservationEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Printf("丢弃畸形预约事件 [%s]: %v", routingKey, err)
			return nil
		}
		notify(routingKey, fmt.Sprintf("user=%d book=%d reservation=%s expiry=%s",
			event.UserID, event.BookID, event.ReservationUID, event.ExpiryDate))

	default:
		log.Printf("忽略未知路由键: %s", routingKey)
	}

	return nil
}

// notify 发送通知
// TODO: 接入邮件网关后按用户偏好选择渠道
func notify(kind, detail string) {
	fmt.Fprintf(os.Stdout, "[notify] %s %s\n", kind, detail)
}
