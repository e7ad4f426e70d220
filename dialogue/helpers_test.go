package dialogue

import (
	"context"
	"fmt"

	"github.com/BaSui01/roundtable/llm"
)

// stubOracle 是测试用 Provider：按调用顺序返回脚本中的回复或错误，
// 并记录收到的请求以便断言叙事渲染。
type stubOracle struct {
	name     string
	script   []string
	errs     map[int]error // 第 n 次调用（从 0 起）返回的错误
	calls    int
	requests []*llm.GenerateRequest
}

func newStubOracle(script ...string) *stubOracle {
	return &stubOracle{name: "stub", script: script, errs: map[int]error{}}
}

func (s *stubOracle) Name() string { return s.name }

func (s *stubOracle) Generate(_ context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	call := s.calls
	s.calls++
	s.requests = append(s.requests, req)
	if err, ok := s.errs[call]; ok {
		return nil, err
	}
	if call >= len(s.script) {
		return nil, fmt.Errorf("stub oracle: no scripted reply for call %d", call)
	}
	return &llm.GenerateResponse{
		Text:         s.script[call],
		Model:        req.Model,
		Provider:     s.name,
		FinishReason: "stop",
	}, nil
}
