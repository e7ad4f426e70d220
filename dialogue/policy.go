package dialogue

import "math/rand"

// SelectionPolicy 决定下一个发言者在花名册中的下标。
// 实现必须对任意 turnIndex >= 0 与 rosterSize >= 1 返回 [0, rosterSize) 内的值。
type SelectionPolicy interface {
	Next(turnIndex, rosterSize int) int
}

// RoundRobinPolicy 是默认策略：(turnIndex + 1) % rosterSize。
//
// +1 偏移是一个花名册顺序约定：首个回合由第二位成员发言。当花名册为
// [旁白, 应答者] 且开场内容已由 Prime 归属给旁白时，这保持了
// 旁白—应答者的交替节奏。换一种花名册顺序，首个发言者也随之改变。
type RoundRobinPolicy struct{}

func (RoundRobinPolicy) Next(turnIndex, rosterSize int) int {
	return (turnIndex + 1) % rosterSize
}

// RandomPolicy 按种子确定的伪随机序列选择发言者。
// 相同种子产生相同的发言顺序，可复现。
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy 创建随机策略。
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Next(_, rosterSize int) int {
	return p.rng.Intn(rosterSize)
}
