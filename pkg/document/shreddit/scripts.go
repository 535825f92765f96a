package shreddit

// JavaScript evaluated against the thread page. Comment nodes are
// shreddit-comment elements carrying depth/author/thingid/permalink
// attributes; disclosure controls are clickable elements whose visible label
// contains "more replies" or "more comments".

const totalCommentsScript = `() => document.querySelectorAll('shreddit-comment').length`

const topLevelCommentsScript = `() => document.querySelectorAll('shreddit-comment[depth="0"]').length`

// listControlsScript enumerates visible disclosure controls, stamping each
// with a token attribute for later resolution, and resolves the effective
// depth from the nearest ancestor comment.
const listControlsScript = `() => {
	const candidates = document.querySelectorAll(
		'button, summary, faceplate-partial[loading="action"], a[rel="nofollow"]'
	);
	const controls = [];
	let seq = 0;
	for (const el of candidates) {
		const label = (el.textContent || '').trim().toLowerCase();
		if (!label.includes('more replies') && !label.includes('more comments')) {
			continue;
		}
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 && rect.height === 0) {
			continue;
		}
		const ancestor = el.closest('shreddit-comment');
		const depth = ancestor ? (parseInt(ancestor.getAttribute('depth') || '0', 10) + 1) : 0;
		const token = 'tv-' + Date.now() + '-' + (seq++);
		el.setAttribute('data-threadvoice-token', token);
		controls.push({ token: token, depth: depth });
	}
	return controls;
}`

// revealScript clicks the control stamped with the given token, returning
// whether it was still present.
const revealScript = `(token) => {
	const el = document.querySelector('[data-threadvoice-token="' + token + '"]');
	if (!el) {
		return false;
	}
	el.click();
	return true;
}`

// listCommentsScript snapshots every visible comment node in document order.
const listCommentsScript = `() => {
	const nodes = [];
	for (const el of document.querySelectorAll('shreddit-comment')) {
		const body = el.querySelector('[slot="comment"]') || el;
		nodes.push({
			thingId: el.getAttribute('thingid') || el.getAttribute('thing-id') || '',
			author: el.getAttribute('author') || '',
			depth: parseInt(el.getAttribute('depth') || '0', 10),
			permalink: el.getAttribute('permalink') || '',
			text: (body.textContent || '').trim(),
		});
	}
	return nodes;
}`

// postScript reads the submission title and body markup through a short
// fallback chain of selectors.
const postScript = `() => {
	const titleEl =
		document.querySelector('shreddit-post h1[slot="title"]') ||
		document.querySelector('h1[slot="title"]') ||
		document.querySelector('shreddit-title') ||
		document.querySelector('h1');
	const bodyEl =
		document.querySelector('shreddit-post [slot="text-body"]') ||
		document.querySelector('[slot="text-body"]') ||
		document.querySelector('shreddit-post .md') ||
		document.querySelector('[data-post-click-location="text-body"]');
	return {
		title: titleEl ? (titleEl.textContent || '').trim() : '',
		bodyHtml: bodyEl ? bodyEl.innerHTML : '',
	};
}`

// highlightScript outlines the active node and scrolls it into view. The id
// "post" targets the submission itself.
const highlightScript = `(id) => {
	for (const prev of document.querySelectorAll('[data-threadvoice-active]')) {
		prev.style.outline = '';
		prev.style.outlineOffset = '';
		prev.removeAttribute('data-threadvoice-active');
	}
	let el = null;
	if (id === 'post') {
		el = document.querySelector('shreddit-post') || document.querySelector('h1');
	} else {
		el = document.querySelector('shreddit-comment[thingid="' + id + '"]');
	}
	if (!el) {
		return false;
	}
	el.setAttribute('data-threadvoice-active', 'true');
	el.style.outline = '3px solid #ff4500';
	el.style.outlineOffset = '2px';
	el.scrollIntoView({ behavior: 'smooth', block: 'center' });
	return true;
}`

const clearHighlightScript = `() => {
	for (const prev of document.querySelectorAll('[data-threadvoice-active]')) {
		prev.style.outline = '';
		prev.style.outlineOffset = '';
		prev.removeAttribute('data-threadvoice-active');
	}
	return true;
}`
