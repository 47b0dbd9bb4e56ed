package scene

import (
	"fmt"
	"math/rand"
	"sync"
)

// specialLoadingMessage is shown for fictional locations regardless of scene.
const specialLoadingMessage = "正在校准坐标，准备跃迁..."

// MessagePicker selects user-facing loading copy. Selection is random but
// carries no semantic effect on generation; the randomness source is injected
// so tests can pin the choice.
type MessagePicker struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewMessagePicker returns a picker seeded from the given source.
func NewMessagePicker(seed int64) *MessagePicker {
	return &MessagePicker{r: rand.New(rand.NewSource(seed))}
}

// LoadingMessage returns one message from the fixed pool. Special locations
// always get the calibration message. firstCityName is the gallery owner's
// home city, used for the map-folding line; timeOfDay fills the freeze-frame
// line when present.
func (p *MessagePicker) LoadingMessage(cityName, nickname, firstCityName, timeOfDay string, special bool) string {
	if special {
		return specialLoadingMessage
	}
	if firstCityName == "" {
		firstCityName = "这里"
	}
	if timeOfDay == "" {
		timeOfDay = "此刻"
	}
	pool := []string{
		fmt.Sprintf("正在折叠 %s 与 %s 之间的地图...", firstCityName, cityName),
		fmt.Sprintf("正在捕获 %s 的季风...", cityName),
		fmt.Sprintf("我想看看 %s 的窗外...", nickname),
		fmt.Sprintf("正在将 %s 的 %s 凝固进画框...", cityName, timeOfDay),
		fmt.Sprintf("正在聆听此时此刻的 %s ...", cityName),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return pool[p.r.Intn(len(pool))]
}
