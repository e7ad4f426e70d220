// Copyright (c) Roundtable Authors.
// Licensed under the MIT License.

/*
Package dialogue 实现回合制多发言者对话编排。

# 概述

Orchestrator 持有一个顺序固定的发言者花名册，按选择策略逐回合驱动：
选中的 Speaker 把「行为指令 + 对话叙事」交给外部文本生成 oracle 产出
一句新发言，随后该发言被广播给花名册内的所有 Speaker（包括发言者自己）。

每个 Speaker 维护一份私有副本式的对话记录；广播纪律保证所有副本在每个
完成的回合后保持一致，等于全局发言历史。失败的回合是原子的：oracle
调用失败时不发生任何广播，回合计数不变，调用方可以安全地立即重试。

# 执行模型

严格单线程顺序执行，唯一的挂起点是 Produce 内的 oracle 调用。并行运行
多个互不相关的对话时，为每个对话建立独立的 Orchestrator（见 RunMany）。

# 终止

Orchestrator 自身没有内建终止条件；回合预算与基于内容的停止条件由
Runner（或任何调用方）掌握。
*/
package dialogue
