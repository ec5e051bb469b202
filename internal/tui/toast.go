package tui

import "time"

// toastTTL is how long a toast stays on screen
const toastTTL = 4 * time.Second

// Toast is a transient message shown under the tabs
type Toast struct {
	Message string
	Level   string
	Expires time.Time
}

type ToastQueue struct {
	items []Toast
}

func NewToastQueue() *ToastQueue {
	return &ToastQueue{}
}

func (queue *ToastQueue) Push(toast Toast) {
	queue.items = append(queue.items, toast)
}

func (queue *ToastQueue) Peek() (Toast, bool) {
	if len(queue.items) == 0 {
		return Toast{}, false
	}
	return queue.items[0], true
}

func (queue *ToastQueue) Pop() (Toast, bool) {
	if len(queue.items) == 0 {
		return Toast{}, false
	}
	item := queue.items[0]
	queue.items = queue.items[1:]
	return item, true
}

// Expire drops every toast whose time has passed
func (queue *ToastQueue) Expire(now time.Time) {
	for {
		toast, ok := queue.Peek()
		if !ok || now.Before(toast.Expires) {
			return
		}
		queue.Pop()
	}
}

func (queue *ToastQueue) Len() int {
	return len(queue.items)
}
