package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInit 测试指标初始化
func TestInit(t *testing.T) {
	Init()

	if LoansIssuedTotal == nil {
		t.Error("LoansIssuedTotal未初始化")
	}
	if LoansFailedTotal == nil {
		t.Error("LoansFailedTotal未初始化")
	}
	if LoansOpen == nil {
		t.Error("LoansOpen未初始化")
	}
	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal未初始化")
	}

	// 重复初始化不应该panic(promauto重复注册会panic,靠initialized守卫)
	Init()

	t.Log("✓ 所有指标初始化成功,重复Init无副作用")
}

// TestLoanCounters 测试借阅业务指标
func TestLoanCounters(t *testing.T) {
	Init()

	before := counterValue(t, LoansIssuedTotal)
	LoansIssuedTotal.Inc()
	LoansIssuedTotal.Inc()
	after := counterValue(t, LoansIssuedTotal)

	if after-before != 2 {
		t.Errorf("Counter递增错误: expected=+2, got=+%f", after-before)
	}

	t.Logf("✓ LoansIssuedTotal递增正常: %f -> %f", before, after)
}

// TestLoansOpenGauge 测试在借数Gauge可增可减
func TestLoansOpenGauge(t *testing.T) {
	Init()

	before := gaugeValue(t, LoansOpen)
	LoansOpen.Inc()
	LoansOpen.Inc()
	LoansOpen.Dec()
	after := gaugeValue(t, LoansOpen)

	if after-before != 1 {
		t.Errorf("Gauge值错误: expected=+1, got=+%f", after-before)
	}

	t.Logf("✓ LoansOpen增减正常")
}

// TestFailedCounterLabels 测试失败原因标签
func TestFailedCounterLabels(t *testing.T) {
	Init()

	// 不同标签互不影响
	unavailable := LoansFailedTotal.WithLabelValues("unavailable")
	duplicate := LoansFailedTotal.WithLabelValues("duplicate")

	beforeU := counterValue(t, unavailable)
	beforeD := counterValue(t, duplicate)

	unavailable.Inc()

	if counterValue(t, unavailable)-beforeU != 1 {
		t.Error("unavailable标签应该+1")
	}
	if counterValue(t, duplicate)-beforeD != 0 {
		t.Error("duplicate标签不应该变化")
	}

	t.Logf("✓ 失败原因标签互相隔离")
}

// counterValue 读取Counter当前值
func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("读取Counter失败: %v", err)
	}
	return m.GetCounter().GetValue()
}

// gaugeValue 读取Gauge当前值
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("读取Gauge失败: %v", err)
	}
	return m.GetGauge().GetValue()
}
