package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		hookable *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hookable = NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start without hooks", func() {
		Expect(hookable.NumHooks()).To(Equal(0))
		Expect(hookable.Hooks()).To(BeEmpty())
	})

	It("should register hooks in order", func() {
		h1 := NewMockHook(mockCtrl)
		h2 := NewMockHook(mockCtrl)

		hookable.AcceptHook(h1)
		hookable.AcceptHook(h2)

		Expect(hookable.NumHooks()).To(Equal(2))
		Expect(hookable.Hooks()[0]).To(BeIdenticalTo(h1))
		Expect(hookable.Hooks()[1]).To(BeIdenticalTo(h2))
	})

	It("should panic on duplicated hook", func() {
		h := NewMockHook(mockCtrl)
		hookable.AcceptHook(h)

		Expect(func() { hookable.AcceptHook(h) }).To(Panic())
	})

	It("should invoke every hook with the context", func() {
		h1 := NewMockHook(mockCtrl)
		h2 := NewMockHook(mockCtrl)
		hookable.AcceptHook(h1)
		hookable.AcceptHook(h2)

		pos := &HookPos{Name: "Test"}
		ctx := HookCtx{Domain: hookable, Pos: pos, Item: 42}

		gomock.InOrder(
			h1.EXPECT().Func(ctx),
			h2.EXPECT().Func(ctx),
		)

		hookable.InvokeHook(ctx)
	})
})
